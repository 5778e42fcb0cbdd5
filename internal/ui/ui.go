package ui

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
	"github.com/DaanHessen/fieldmap-tui/internal/text"
	"github.com/DaanHessen/fieldmap-tui/internal/util"
)

const (
	inputNone   = ""
	inputSearch = "search"
	inputLabel  = "label"
	inputType   = "type"
)

const (
	sidebarWidth = 34
	scaleStep    = 0.25
	elevStep     = 0.5
	saveTimeout  = 10 * time.Second
	loadTimeout  = 30 * time.Second
)

// saveDoneMsg and loadDoneMsg carry gateway results back to Update.
type saveDoneMsg struct {
	count int
	err   error
}

type loadDoneMsg struct {
	ds  engine.Dataset
	err error
}

// defaultFloor is where items go when the loaded dataset has no floors yet.
var defaultFloor = engine.FloorKey{Building: "site", Floor: "1F"}

type model struct {
	ctx      context.Context
	ctrl     *engine.Controller
	sess     *engine.Session
	cam      engine.OrthoCamera
	nav      *panLock
	notices  *noticeQueue
	reg      *Registry
	renderer text.Renderer
	theme    string
	st       styles
	version  string

	width  int
	height int

	// pointer state between press and release
	pressed bool
	pressID string

	// text field
	input  string
	buffer string

	labelKey bool // "l" pressed, waiting for a category digit
	showHelp bool
	status   string
	busy     string // "saving" or "loading" while a gateway call is out
}

func initialModel(ctx context.Context, gw engine.Gateway, cfg *util.Config, version string) model {
	nav := &panLock{}
	notices := &noticeQueue{}
	repo := engine.NewRepository(cfg.History.Limit)
	opts := []engine.Option{engine.WithNavigator(nav), engine.WithNotifier(notices)}
	if gw != nil {
		opts = append(opts, engine.WithGateway(gw))
	}
	ctrl := engine.NewController(repo, opts...)

	cam := engine.NewOrthoCamera()
	if cfg.UI.CellWidth > 0 {
		cam.CellX = 1 / float64(cfg.UI.CellWidth)
	}
	renderer := text.Plain()
	if g, err := text.NewGlamour(sidebarWidth - 2); err == nil {
		renderer = text.WithFallback(g, text.Plain())
	} else {
		log.Printf("glamour unavailable: %v", err)
	}
	theme := cfg.UI.Theme
	if _, ok := palettes[theme]; !ok {
		theme = defaultTheme
	}
	return model{
		ctx:      ctx,
		ctrl:     ctrl,
		sess:     engine.NewSession(defaultFloor),
		cam:      cam,
		nav:      nav,
		notices:  notices,
		reg:      NewRegistry(),
		renderer: renderer,
		theme:    theme,
		st:       newStyles(paletteFor(theme)),
		version:  version,
	}
}

// tea.Model implementation ---------------------------------------------------
func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.BlurMsg:
		// a drag must not outlive focus; the release may never arrive
		m.ctrl.CancelGesture(m.sess)
		m.pressed = false
		m.pressID = ""
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case saveDoneMsg:
		m.busy = ""
		if msg.err != nil {
			log.Printf("save failed: %v", msg.err)
			m.notices.Notify("Save failed: " + msg.err.Error())
			return m, nil
		}
		m.status = fmt.Sprintf("saved %d items", msg.count)
		return m, nil
	case loadDoneMsg:
		m.busy = ""
		if msg.err != nil {
			log.Printf("load failed: %v", msg.err)
			m.notices.Notify("Could not load data: " + msg.err.Error() + "\nSaving stays disabled. Press ctrl+r to retry.")
			return m, nil
		}
		m.ctrl.Install(m.sess, msg.ds)
		m.centerCamera()
		m.status = fmt.Sprintf("loaded %d items", msg.ds.Count())
		return m, nil
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if _, blocked := m.notices.Peek(); blocked || m.showHelp {
		return
	}
	pv := m.plan()
	col, row := msg.X, msg.Y-1
	inside := col >= 0 && col < pv.width && row >= 0 && row < pv.height
	ray := m.cam.Ray(engine.Pointer{Col: float64(col), Row: float64(row)})

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return
		}
		m.pressed = true
		m.pressID, _ = pv.hit(col, row)
		if m.pressID != "" {
			m.ctrl.PointerDown(m.sess, m.pressID)
		}
	case tea.MouseActionMotion:
		if m.sess.Dragging() {
			m.ctrl.PointerMove(m.sess, ray)
		}
		m.sess.Hover = ""
		if inside {
			m.sess.Hover, _ = m.plan().hit(col, row)
		}
	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		m.ctrl.PointerUp(m.sess)
		switch {
		case m.pressID != "":
			m.ctrl.Click(m.sess, m.pressID)
		case inside:
			m.ctrl.ClickFloor(m.sess, ray)
		}
		m.pressID = ""
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if _, ok := m.notices.Peek(); ok {
		m.notices.Pop()
		return m, nil
	}
	if m.input != inputNone {
		m.handleInput(msg)
		return m, nil
	}
	if m.showHelp {
		switch k {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}
	if m.labelKey {
		m.labelKey = false
		if d := digit(k); d > 0 {
			if cats := engine.CategoryLabels(); d <= len(cats) {
				m.ctrl.ToggleLabels(cats[d-1])
			}
		}
		return m, nil
	}
	if m.ctrl.HandleKey(m.sess, k) {
		return m, nil
	}
	m.status = ""
	switch k {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "e":
		m.ctrl.ToggleEdit(m.sess)
	case "m":
		if m.sess.Editing {
			m.ctrl.ToggleMode(m.sess)
		}
	case "[":
		m.ctrl.StepFloor(m.sess, -1)
	case "]":
		m.ctrl.StepFloor(m.sess, 1)
	case "up", "down", "left", "right":
		m.pan(k)
	case "c":
		m.centerCamera()
	case "/":
		m.openInput(inputSearch, "")
	case "l":
		m.labelKey = true
	case "esc":
		m.escape()
	case "enter":
		if it, ok := m.editorItem(); ok {
			m.openInput(inputLabel, it.Label)
		}
	case "t":
		if it, ok := m.editorItem(); ok {
			m.openInput(inputType, it.Type)
		}
	case "r":
		m.whenEditing(func() { m.ctrl.Rotate(m.sess, 1) })
	case "R":
		m.whenEditing(func() { m.ctrl.Rotate(m.sess, -1) })
	case "+", "=":
		if it, ok := m.editorItem(); ok {
			m.ctrl.SetScale(m.sess, it.Scale+scaleStep)
		}
	case "-":
		if it, ok := m.editorItem(); ok && it.Scale-scaleStep >= scaleStep {
			m.ctrl.SetScale(m.sess, it.Scale-scaleStep)
		}
	case "pgup":
		if it, ok := m.editorItem(); ok {
			m.ctrl.SetElevation(m.sess, it.Y+elevStep)
		}
	case "pgdown":
		if it, ok := m.editorItem(); ok {
			m.ctrl.SetElevation(m.sess, it.Y-elevStep)
		}
	case "ctrl+s":
		cmd := m.save()
		return m, cmd
	case "ctrl+r":
		cmd := m.reload()
		return m, cmd
	case "T":
		m.setTheme(nextThemeName(m.theme, 1))
	default:
		if d := digit(k); d > 0 && d <= len(engine.PaletteTypes) {
			typ := engine.PaletteTypes[d-1]
			if m.sess.Tool == typ {
				typ = ""
			}
			m.ctrl.SelectTool(m.sess, typ)
		}
	}
	return m, nil
}

func (m *model) handleInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input, m.buffer = inputNone, ""
	case tea.KeyEnter:
		m.commitInput()
	case tea.KeyBackspace:
		if r := []rune(m.buffer); len(r) > 0 {
			m.buffer = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.buffer += " "
	case tea.KeyRunes:
		m.buffer += string(msg.Runes)
	}
}

func (m *model) openInput(kind, initial string) {
	m.input = kind
	m.buffer = initial
}

func (m *model) commitInput() {
	kind, buf := m.input, m.buffer
	m.input, m.buffer = inputNone, ""
	switch kind {
	case inputSearch:
		m.ctrl.Search(m.sess, buf)
	case inputLabel:
		m.ctrl.SetLabel(m.sess, buf)
	case inputType:
		m.ctrl.SetType(m.sess, normalizeType(buf))
	}
}

// normalizeType turns typed text into a type tag: "ball valve" -> "BALL_VALVE".
func normalizeType(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), "_"))
}

// editorItem is the selection when the property editor applies to it.
func (m *model) editorItem() (engine.PlacedItem, bool) {
	if !m.sess.Editing || m.sess.Mode != engine.ModeProperties {
		return engine.PlacedItem{}, false
	}
	return m.ctrl.Selected(m.sess)
}

func (m *model) whenEditing(fn func()) {
	if _, ok := m.editorItem(); ok {
		fn()
	}
}

func (m *model) escape() {
	switch {
	case m.sess.Tool != "":
		m.ctrl.SelectTool(m.sess, "")
	case len(m.sess.Highlighted) > 0:
		m.ctrl.ClearSearch(m.sess)
	default:
		m.sess.Selection = ""
		m.sess.EditorOpen = false
	}
}

func (m *model) pan(dir string) {
	if m.nav.Suspended() {
		return
	}
	switch dir {
	case "up":
		m.cam = m.cam.Pan(0, -2)
	case "down":
		m.cam = m.cam.Pan(0, 2)
	case "left":
		m.cam = m.cam.Pan(-4, 0)
	case "right":
		m.cam = m.cam.Pan(4, 0)
	}
}

// centerCamera frames the current floor's items, or the origin when empty.
func (m *model) centerCamera() {
	if m.nav.Suspended() {
		return
	}
	pv := m.plan()
	items := pv.items
	cx, cz := 0.0, 0.0
	if len(items) > 0 {
		minX, maxX := math.Inf(1), math.Inf(-1)
		minZ, maxZ := math.Inf(1), math.Inf(-1)
		for _, it := range items {
			minX, maxX = math.Min(minX, it.X), math.Max(maxX, it.X)
			minZ, maxZ = math.Min(minZ, it.Z), math.Max(maxZ, it.Z)
		}
		cx, cz = (minX+maxX)/2, (minZ+maxZ)/2
	}
	m.cam.OriginX = cx - float64(pv.width/2)*m.cam.CellX
	m.cam.OriginZ = cz - float64(pv.height/2)*m.cam.CellZ
}

// save snapshots the dataset here and writes it from a command, so the
// gateway never runs on the event loop. Edits made while it runs are not in
// this save.
func (m *model) save() tea.Cmd {
	if m.busy != "" {
		m.status = m.busy + "…"
		return nil
	}
	ds, err := m.ctrl.Snapshot()
	if err != nil {
		m.notices.Notify("Save refused: " + err.Error() + ". Press ctrl+r to retry loading.")
		return nil
	}
	m.busy = "saving"
	m.status = "saving…"
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		return saveDoneMsg{count: ds.Count(), err: ctrl.Persist(ctx, ds)}
	}
}

// reload retries the load after a failed one. Once data is loaded it refuses,
// since installing would drop unsaved edits.
func (m *model) reload() tea.Cmd {
	if m.ctrl.Loaded() {
		m.status = "already loaded"
		return nil
	}
	if m.busy != "" {
		m.status = m.busy + "…"
		return nil
	}
	m.busy = "loading"
	m.status = "loading…"
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		ds, err := ctrl.Fetch(ctx)
		return loadDoneMsg{ds: ds, err: err}
	}
}

func (m *model) setTheme(name string) {
	m.theme = name
	m.st = newStyles(paletteFor(name))
}

func digit(k string) int {
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		return int(k[0] - '0')
	}
	return 0
}

// Layout ---------------------------------------------------------------------

func (m model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 30
	}
	return w, h
}

// plan covers everything left of the sidebar between the top bar and the two
// bottom lines.
func (m model) plan() planView {
	w, h := m.size()
	pw := w - sidebarWidth - 2
	if pw < 1 {
		pw = 1
	}
	ph := h - 3
	if ph < 1 {
		ph = 1
	}
	return planView{cam: m.cam, width: pw, height: ph, items: m.ctrl.Repository().ItemsFor(m.sess.Floor)}
}

func (m model) View() string {
	w, h := m.size()
	if note, ok := m.notices.Peek(); ok {
		box := m.st.modal.Width(min(60, w-4)).Render(note + "\n\n(press any key)")
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
	}
	top := m.renderTopBar(w)
	var body string
	if m.showHelp {
		rendered, _ := m.renderer.Render(text.Help())
		body = lipgloss.NewStyle().Width(w).MaxHeight(h - 3).Render(rendered)
	} else {
		pv := m.plan()
		plan := pv.render(m.reg, m.st, m.sess, m.ctrl.Labels())
		side := m.st.side.Width(sidebarWidth).Height(pv.height - 2).MaxHeight(pv.height).Render(m.buildSidebar())
		body = lipgloss.JoinHorizontal(lipgloss.Top, plan, side)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body, m.renderBottomBar(w))
}

func (m model) renderTopBar(w int) string {
	floor := m.ctrl.Repository().FloorLabel(m.sess.Floor)
	if floor == "" {
		floor = m.sess.Floor.String()
	}
	mode := "VIEW"
	if m.sess.Editing {
		mode = "EDIT " + strings.ToUpper(string(m.sess.Mode))
	}
	left := strings.Join([]string{"FIELD MAP", floor, mode}, " • ")
	if m.sess.Tool != "" {
		left += " • placing " + m.sess.Tool
	}
	past, future := m.ctrl.Repository().HistoryDepth()
	right := fmt.Sprintf("undo %d  redo %d", past, future)
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.st.top.MaxWidth(w).Render(left + strings.Repeat(" ", gap) + right)
}

func (m model) renderBottomBar(w int) string {
	var hints string
	switch m.sess.State() {
	case engine.StateView:
		hints = "[e] edit  [/] search  [ ] floors  [l#] labels  [arrows] pan  [?] help  [q] quit"
	case engine.StatePlacing:
		hints = "click the floor to place  [esc] cancel"
	case engine.StateDragging:
		hints = "release to drop"
	default:
		hints = "[1-9] tools  [m] mode  [del] delete  [ctrl+z/y] undo/redo  [ctrl+c/v] copy/paste  [ctrl+s] save  [e] done"
	}
	var line string
	switch {
	case m.input != inputNone:
		line = m.st.prompt.Render(m.input+"> ") + m.buffer + "█"
	case m.labelKey:
		line = "label category? 1-" + fmt.Sprint(len(engine.CategoryLabels()))
	case m.status != "":
		line = m.status
	case m.sess.Hover != "":
		if it, ok := m.ctrl.Repository().Find(m.sess.Floor, m.sess.Hover); ok {
			line = fmt.Sprintf("%s  %s  (%.1f, %.1f)", it.Label, it.Type, it.X, it.Z)
		}
	}
	style := m.st.bottom.MaxWidth(w)
	return style.Render(hints) + "\n" + style.Render(line)
}

func (m model) buildSidebar() string {
	var b strings.Builder
	b.WriteString(text.FloorList(m.ctrl.Repository().Dataset(), m.sess.Floor))
	if it, ok := m.ctrl.Selected(m.sess); ok {
		_, editable := m.editorItem()
		b.WriteString("\n" + text.ItemSheet(it, editable))
	}
	b.WriteString("\n" + text.LabelToggles(m.ctrl.Labels()))
	out, err := m.renderer.Render(b.String())
	if err != nil {
		return b.String()
	}
	return strings.Trim(out, "\n")
}
