package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sbai-works/drawctl/client"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/page"
	"github.com/sbai-works/drawctl/poll"
	"github.com/sbai-works/drawctl/types"
)

// section identifies one tab of the results viewer.
type section int

const (
	sectionSummary section = iota
	sectionImages
	sectionBom
)

var sectionNames = []string{"Summary", "Images", "BOM"}

// fetchedMsg carries one fetch outcome back into the model. The seq token
// came from the tracker before the request was issued; Update feeds it back
// through Apply so a slow response cannot overwrite fresher state.
type fetchedMsg struct {
	seq uint64
	doc *types.ResultDocument
	err error
}

// tickMsg fires when the follow-up poll delay elapses.
type tickMsg struct{}

// resultsKeyMap defines key bindings for the results viewer.
type resultsKeyMap struct {
	Quit    key.Binding
	Tab     key.Binding
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Expand  key.Binding
	Refresh key.Binding
}

var resultsKeys = resultsKeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "section")),
	Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "row up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "row down")),
	Expand:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand row")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

// ResultsModel is the Bubble Tea model for the polling results viewer.
//
// While the document status is active the model keeps re-fetching on a
// fixed interval; a terminal status or an unknown session stops the
// schedule. Responses are guarded by a poll.Tracker so out-of-order
// arrivals are discarded instead of regressing the view.
type ResultsModel struct {
	fetcher  poll.Fetcher
	tracker  *poll.Tracker
	interval time.Duration

	spin   spinner.Model
	doc    *types.ResultDocument
	warn   string
	gone   bool // session id unknown; polling stopped

	section section
	images  *page.Pager
	bom     *page.Pager
	cursor  int
	expand  page.Expansion

	awaiting   bool // a fetch is outstanding
	timerArmed bool

	width    int
	height   int
	quitting bool
}

// NewResultsModel creates a results viewer bound to one session id.
// A non-positive interval falls back to poll.DefaultInterval.
func NewResultsModel(sessionID string, fetcher poll.Fetcher, interval time.Duration, collector *metrics.Collector) ResultsModel {
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarningStyle
	return ResultsModel{
		fetcher:  fetcher,
		tracker:  poll.NewTracker(sessionID, collector),
		interval: interval,
		spin:     sp,
		images:   page.NewPager(page.ImagePageSize),
		bom:      page.NewPager(page.BomPageSize),
	}
}

// Init implements tea.Model: issue the first fetch immediately.
func (m ResultsModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchCmd())
}

// fetchCmd draws a sequence token now, then fetches asynchronously.
func (m ResultsModel) fetchCmd() tea.Cmd {
	seq := m.tracker.Begin()
	fetcher := m.fetcher
	sessionID := m.tracker.SessionID()
	return func() tea.Msg {
		doc, err := fetcher.GetResults(context.Background(), sessionID)
		return fetchedMsg{seq: seq, doc: doc, err: err}
	}
}

func (m ResultsModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.polling() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		m.timerArmed = false
		if m.awaiting || m.gone {
			return m, nil
		}
		m.awaiting = true
		return m, m.fetchCmd()

	case fetchedMsg:
		return m.applyFetch(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ResultsModel) applyFetch(msg fetchedMsg) (tea.Model, tea.Cmd) {
	m.awaiting = false

	switch {
	case msg.err == nil:
		if m.tracker.Apply(msg.seq, msg.doc) {
			m.doc = msg.doc
			m.warn = ""
			m.syncViewers()
		}

	case errors.Is(msg.err, client.ErrSessionNotFound):
		m.gone = true
		return m, nil

	default:
		// Transient failure: keep the last good document and the schedule.
		m.warn = msg.err.Error()
	}

	if m.polling() && !m.timerArmed {
		m.timerArmed = true
		return m, m.tickCmd()
	}
	return m, nil
}

// polling reports whether follow-up fetches should still be scheduled.
func (m ResultsModel) polling() bool {
	if m.gone {
		return false
	}
	return m.doc == nil || !m.doc.Status.Terminal()
}

// syncViewers reconciles pagination and expansion state with a refreshed
// document. Pagers re-clamp their own indexes; the expansion survives only
// if its page number is still present.
func (m *ResultsModel) syncViewers() {
	m.images.SetLength(len(m.doc.Images))

	pages := m.bomPageNos()
	m.bom = m.bomPager()
	m.bom.SetLength(len(pages))
	m.expand.Sync(pages)
	m.clampCursor()
}

// bomPager returns a pager sized for the document's BOM variant, keeping
// the current page index when the variant is unchanged.
func (m *ResultsModel) bomPager() *page.Pager {
	size := page.BomPageSize
	if m.doc != nil && m.doc.Preview.BomKind() == types.BomVLM {
		size = page.VlmBomPageSize
	}
	if m.bom != nil && m.bom.Size() == size {
		return m.bom
	}
	return page.NewPager(size)
}

// bomPageNos returns the 1-based page numbers of the document's BOM rows.
func (m *ResultsModel) bomPageNos() []int {
	if m.doc == nil {
		return nil
	}
	switch m.doc.Preview.BomKind() {
	case types.BomVLM:
		nos := make([]int, len(m.doc.Preview.VlmBom.Pages))
		for i, p := range m.doc.Preview.VlmBom.Pages {
			nos[i] = p.Page
		}
		return nos
	case types.BomLegacy:
		nos := make([]int, len(m.doc.Preview.PipeBom.Pages))
		for i, p := range m.doc.Preview.PipeBom.Pages {
			nos[i] = p.Page
		}
		return nos
	default:
		return nil
	}
}

func (m ResultsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, resultsKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, resultsKeys.Tab):
		m.section = (m.section + 1) % section(len(sectionNames))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, resultsKeys.Next):
		if p := m.activePager(); p != nil {
			p.Next()
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, resultsKeys.Prev):
		if p := m.activePager(); p != nil {
			p.Prev()
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, resultsKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, resultsKeys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, resultsKeys.Expand):
		if m.section == sectionBom {
			if no, ok := m.cursorPageNo(); ok {
				m.expand.Toggle(no)
			}
		}
		return m, nil

	case key.Matches(msg, resultsKeys.Refresh):
		if m.awaiting || m.gone {
			return m, nil
		}
		m.awaiting = true
		return m, m.fetchCmd()
	}

	return m, nil
}

func (m *ResultsModel) activePager() *page.Pager {
	switch m.section {
	case sectionImages:
		return m.images
	case sectionBom:
		return m.bom
	default:
		return nil
	}
}

func (m *ResultsModel) clampCursor() {
	p := m.activePager()
	if p == nil {
		m.cursor = 0
		return
	}
	lo, hi := p.Bounds()
	if n := hi - lo; m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cursorPageNo resolves the cursor row to its 1-based BOM page number.
func (m *ResultsModel) cursorPageNo() (int, bool) {
	nos := m.bomPageNos()
	lo, _ := m.bom.Bounds()
	idx := lo + m.cursor
	if idx < 0 || idx >= len(nos) {
		return 0, false
	}
	return nos[idx], true
}

// View implements tea.Model.
func (m ResultsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case m.gone:
		b.WriteString(ErrorStyle.Render("세션을 찾을 수 없습니다: " + m.tracker.SessionID()))
	case m.doc == nil:
		b.WriteString(m.spin.View() + " 결과를 불러오는 중...")
	default:
		b.WriteString(m.renderTabs())
		b.WriteString("\n\n")
		switch m.section {
		case sectionSummary:
			b.WriteString(m.renderSummary())
		case sectionImages:
			b.WriteString(m.renderImages())
		case sectionBom:
			b.WriteString(m.renderBom())
		}
	}

	if m.warn != "" {
		b.WriteString("\n" + WarningStyle.Render("갱신 실패, 재시도 중: "+m.warn))
	}
	b.WriteString("\n" + HelpStyle.Render("tab: section • ←/→: page • ↑/↓: row • enter: expand • r: refresh • q: quit"))
	return b.String()
}

func (m ResultsModel) renderHeader() string {
	title := TitleStyle.Render("도면 분석 결과")
	if m.doc == nil {
		return title + "\n" + LabelStyle.Render("Session:") + " " + ValueStyle.Render(m.tracker.SessionID())
	}

	status := StatusStyle(m.doc.Status).Render(m.doc.Status.Label())
	if m.polling() {
		status = m.spin.View() + " " + status
	}
	return title + "\n" +
		LabelStyle.Render("Session:") + " " + ValueStyle.Render(m.doc.SessionID) + "\n" +
		LabelStyle.Render("File:") + " " + ValueStyle.Render(m.doc.FileName) + "\n" +
		LabelStyle.Render("Status:") + " " + status
}

func (m ResultsModel) renderTabs() string {
	var tabs []string
	for i, name := range sectionNames {
		if section(i) == m.section {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, TabStyle.Render(name))
		}
	}
	return strings.Join(tabs, " ")
}

func (m ResultsModel) renderSummary() string {
	var b strings.Builder
	p := m.doc.Preview

	if p.Valves != nil {
		b.WriteString(TitleStyle.Render("밸브 집계") + "\n")
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("밸브 총 수:"),
			ValueStyle.Render(fmt.Sprintf("%d", p.Valves.Total))))
		for _, vt := range sortedCountKeys(p.Valves.ByType) {
			b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("  "+vt+":"), p.Valves.ByType[vt]))
		}
		b.WriteString("\n")
	}

	if len(p.Dimensions) > 0 {
		b.WriteString(fmt.Sprintf("%s %d\n",
			LabelStyle.Render("치수 개수:"), len(p.Dimensions)))
	}
	if p.Symbols != nil {
		b.WriteString(fmt.Sprintf("%s %d\n",
			LabelStyle.Render("심볼 총 수:"), p.Symbols.Total))
	}

	switch p.BomKind() {
	case types.BomVLM:
		v := p.VlmBom
		b.WriteString(TitleStyle.Render("VLM BOM 집계") + "\n")
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("도면 페이지:"), v.TotalPages))
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("파이프 피스:"), v.TotalPipePieces))
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("용접 포인트:"), v.TotalWeldPoints))
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("BOM 항목:"), v.TotalBomItems))
	case types.BomLegacy:
		l := p.PipeBom
		b.WriteString(TitleStyle.Render("배관 BOM 집계") + "\n")
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("도면 페이지:"), l.TotalPages))
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("파이프 피스:"), l.TotalPieces))
		b.WriteString(fmt.Sprintf("%s %d\n", LabelStyle.Render("용접 개소:"), l.TotalWelds))
		b.WriteString(fmt.Sprintf("%s %.0f mm\n", LabelStyle.Render("총 길이:"), l.TotalLengthMm))
	}

	if b.Len() == 0 {
		return HelpStyle.Render("(표시할 요약이 없습니다)")
	}
	return b.String()
}

func (m ResultsModel) renderImages() string {
	if len(m.doc.Images) == 0 {
		return HelpStyle.Render("(이미지가 없습니다)")
	}

	var b strings.Builder
	lo, hi := m.images.Bounds()
	for i, img := range m.doc.Images[lo:hi] {
		line := fmt.Sprintf("%3d. %s", lo+i+1, img.Name)
		if i == m.cursor && m.section == sectionImages {
			line = SelectedRowStyle.Render(line)
		} else {
			line = ValueStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(m.renderPageFooter(m.images))
	return b.String()
}

func (m ResultsModel) renderBom() string {
	switch m.doc.Preview.BomKind() {
	case types.BomVLM:
		return m.renderVlmBom()
	case types.BomLegacy:
		return m.renderLegacyBom()
	default:
		return HelpStyle.Render("(BOM 데이터가 없습니다)")
	}
}

func (m ResultsModel) renderLegacyBom() string {
	var b strings.Builder
	pages := m.doc.Preview.PipeBom.Pages
	lo, hi := m.bom.Bounds()
	for i, pg := range pages[lo:hi] {
		line := fmt.Sprintf("p.%-3d 피스 %-3d 용접 %-3d", pg.Page, len(pg.PipePieces), pg.WeldCount)
		if pg.HasLoose {
			line += "  [loose]"
		}
		if pg.IsCover {
			line = HelpStyle.Render(line)
		} else if i == m.cursor {
			line = SelectedRowStyle.Render(line)
		} else {
			line = ValueStyle.Render(line)
		}
		b.WriteString(line + "\n")

		if m.expand.Expanded(pg.Page) {
			for _, piece := range pg.PipePieces {
				b.WriteString(HelpStyle.Render("      "+piece) + "\n")
			}
			if len(pg.DimensionsMm) > 0 {
				dims := make([]string, len(pg.DimensionsMm))
				for j, d := range pg.DimensionsMm {
					dims[j] = fmt.Sprintf("%.0f", d)
				}
				b.WriteString(HelpStyle.Render("      치수(mm): "+strings.Join(dims, ", ")) + "\n")
			}
		}
	}
	b.WriteString(m.renderPageFooter(m.bom))
	return b.String()
}

func (m ResultsModel) renderVlmBom() string {
	var b strings.Builder
	pages := m.doc.Preview.VlmBom.Pages
	lo, hi := m.bom.Bounds()
	for i, pg := range pages[lo:hi] {
		line := fmt.Sprintf("p.%-3d %-12s 피스 %-3d 부품 %-3d 용접 %-3d", pg.Page, pg.LineNo, len(pg.PipePieces), len(pg.Components), len(pg.WeldPoints))
		if pg.Error != "" {
			line += "  " + ErrorStyle.Render("!")
		}
		if pg.IsCover {
			line = HelpStyle.Render(line)
		} else if i == m.cursor {
			line = SelectedRowStyle.Render(line)
		} else {
			line = ValueStyle.Render(line)
		}
		b.WriteString(line + "\n")

		if m.expand.Expanded(pg.Page) {
			if pg.LineDescription != "" {
				b.WriteString(HelpStyle.Render("      "+pg.LineDescription) + "\n")
			}
			for _, item := range pg.BomTable {
				b.WriteString(HelpStyle.Render(fmt.Sprintf("      %-3s %-6s %s", item.LetterCode, item.Quantity, item.Description)) + "\n")
			}
			if pg.Confidence > 0 {
				b.WriteString(HelpStyle.Render(fmt.Sprintf("      신뢰도: %.0f%%", pg.Confidence*100)) + "\n")
			}
		}
	}
	b.WriteString(m.renderPageFooter(m.bom))
	return b.String()
}

func (m ResultsModel) renderPageFooter(p *page.Pager) string {
	return HelpStyle.Render(fmt.Sprintf("페이지 %d / %d", p.Page()+1, p.Pages()))
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
