package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantdesk/deskclient/internal/command"
	"github.com/quantdesk/deskclient/internal/desk"
	"github.com/quantdesk/deskclient/internal/model"
	"github.com/quantdesk/deskclient/internal/state"
)

// Panel indices, tab order.
const (
	panelTickers = iota
	panelTradingBooks
	panelCustomerBooks
	panelDealsBooks
	panelReports
	panelReportBooks
	panelCount
)

var panelTitles = [panelCount]string{
	"Tickers",
	"Trading books",
	"Customer books",
	"Deals for book",
	"Risk reports",
	"Report book",
}

// Input modes for the one-line prompt at the bottom.
const (
	inputNone = iota
	inputQuantity
	inputRaw
)

// Bubble Tea messages

type snapshotMsg state.Snapshot

type notificationMsg desk.Notification

type flashClearMsg struct{}

// ui is the Bubble Tea model. It only consumes snapshots; all state
// transitions happen in the desk session.
type ui struct {
	session *desk.Session
	snaps   <-chan state.Snapshot
	notes   <-chan desk.Notification

	snap    state.Snapshot
	focus   int
	cursors [panelCount]int

	inputMode int
	inputBuf  string

	flash string
	error string

	width int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle  = panelStyle.BorderForeground(lipgloss.Color("63"))
	selStyle    = lipgloss.NewStyle().Reverse(true)
	pickedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	flashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func newUI(session *desk.Session) *ui {
	return &ui{
		session: session,
		snaps:   session.Store().Subscribe(8),
		notes:   session.Notifications(),
		snap:    session.Store().Snapshot(),
	}
}

func (u *ui) Init() tea.Cmd {
	return tea.Batch(u.waitSnapshot(), u.waitNotification())
}

func (u *ui) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-u.snaps)
	}
}

func (u *ui) waitNotification() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-u.notes)
	}
}

func clearFlashLater() tea.Cmd {
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

func (u *ui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		u.width = msg.Width
		return u, nil

	case snapshotMsg:
		u.snap = state.Snapshot(msg)
		u.clampCursors()
		return u, u.waitSnapshot()

	case notificationMsg:
		u.flash = "trade inserted into database"
		return u, tea.Batch(u.waitNotification(), clearFlashLater())

	case flashClearMsg:
		u.flash = ""
		return u, nil

	case tea.KeyMsg:
		if u.inputMode != inputNone {
			return u.updateInput(msg)
		}
		return u.updateBrowse(msg)
	}

	return u, nil
}

func (u *ui) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return u, tea.Quit
	case "tab":
		u.focus = (u.focus + 1) % panelCount
	case "shift+tab":
		u.focus = (u.focus + panelCount - 1) % panelCount
	case "up", "k":
		if u.cursors[u.focus] > 0 {
			u.cursors[u.focus]--
		}
	case "down", "j":
		if u.cursors[u.focus] < len(u.panelItems(u.focus))-1 {
			u.cursors[u.focus]++
		}
	case "enter":
		u.applySelection()
	case "b":
		u.inputMode = inputQuantity
		u.inputBuf = ""
		u.error = ""
	case "i":
		u.inputMode = inputRaw
		u.inputBuf = ""
		u.errorIfNeeded(nil)
	case "r":
		u.errorIfNeeded(u.session.RunReport())
	}
	return u, nil
}

func (u *ui) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		u.inputMode = inputNone
		u.inputBuf = ""
	case "enter":
		mode := u.inputMode
		text := u.inputBuf
		u.inputMode = inputNone
		u.inputBuf = ""
		if mode == inputQuantity {
			u.submitBooking(text)
		} else if text != "" {
			u.errorIfNeeded(u.session.SendRaw(text))
		}
	case "backspace":
		if len(u.inputBuf) > 0 {
			u.inputBuf = u.inputBuf[:len(u.inputBuf)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			u.inputBuf += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			u.inputBuf += " "
		}
	}
	return u, nil
}

// applySelection commits the highlighted item of the focused panel.
func (u *ui) applySelection() {
	items := u.panelItems(u.focus)
	if len(items) == 0 {
		return
	}
	id := items[u.cursors[u.focus]].id

	var err error
	switch u.focus {
	case panelTickers:
		err = u.session.SelectTicker(id)
	case panelTradingBooks:
		err = u.session.SelectTradingBook(id)
	case panelCustomerBooks:
		err = u.session.SelectCustomerBook(id)
	case panelDealsBooks:
		err = u.session.SelectDealsBook(id)
	case panelReports:
		err = u.session.SelectRiskReport(id)
	case panelReportBooks:
		err = u.session.SelectRiskReportBook(id)
	}
	u.errorIfNeeded(err)
}

func (u *ui) submitBooking(quantity string) {
	sel := u.snap.Selections
	err := u.session.BookTrade(command.BookingForm{
		TradingBook:  sel.TradingBook,
		CustomerBook: sel.CustomerBook,
		Ticker:       sel.Ticker,
		Quantity:     quantity,
		// Date left empty: the session books for today.
	})
	u.errorIfNeeded(err)
}

func (u *ui) errorIfNeeded(err error) {
	if err != nil {
		u.error = err.Error()
	} else {
		u.error = ""
	}
}

// panelItem pairs the identifier sent to the backend with display text.
type panelItem struct {
	id    string
	label string
}

func bookItems(books []model.Book) []panelItem {
	items := make([]panelItem, 0, len(books))
	for _, b := range books {
		items = append(items, panelItem{id: b.ID, label: b.Name})
	}
	return items
}

func stringItems(ss []string) []panelItem {
	items := make([]panelItem, 0, len(ss))
	for _, s := range ss {
		items = append(items, panelItem{id: s, label: s})
	}
	return items
}

func (u *ui) panelItems(panel int) []panelItem {
	switch panel {
	case panelTickers:
		return stringItems(u.snap.Tickers)
	case panelTradingBooks, panelDealsBooks, panelReportBooks:
		// Books for deal lookup and reports are the trading books.
		return bookItems(u.snap.TradingBooks)
	case panelCustomerBooks:
		return bookItems(u.snap.CustomerBooks)
	case panelReports:
		return stringItems(u.snap.ReportNames)
	}
	return nil
}

func (u *ui) panelSelection(panel int) string {
	sel := u.snap.Selections
	switch panel {
	case panelTickers:
		return sel.Ticker
	case panelTradingBooks:
		return sel.TradingBook
	case panelCustomerBooks:
		return sel.CustomerBook
	case panelDealsBooks:
		return sel.DealsBook
	case panelReports:
		return sel.RiskReport
	case panelReportBooks:
		return sel.RiskReportBook
	}
	return ""
}

func (u *ui) clampCursors() {
	for p := 0; p < panelCount; p++ {
		if n := len(u.panelItems(p)); u.cursors[p] >= n {
			if n == 0 {
				u.cursors[p] = 0
			} else {
				u.cursors[p] = n - 1
			}
		}
	}
}

func (u *ui) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Trading Desk"))
	b.WriteString("\n\n")

	panels := make([]string, 0, panelCount)
	for p := 0; p < panelCount; p++ {
		panels = append(panels, u.renderPanel(p))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	b.WriteString(u.renderDeals())
	b.WriteString(u.renderChart())
	b.WriteString(u.renderReport())

	if u.flash != "" {
		b.WriteString(flashStyle.Render(u.flash))
		b.WriteString("\n")
	}
	if u.error != "" {
		b.WriteString(errStyle.Render(u.error))
		b.WriteString("\n")
	}

	switch u.inputMode {
	case inputQuantity:
		b.WriteString("quantity> " + u.inputBuf + "█\n")
	case inputRaw:
		b.WriteString("send> " + u.inputBuf + "█\n")
	default:
		b.WriteString(faintStyle.Render("tab: focus  enter: select  b: book trade  r: run report  i: send text  q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (u *ui) renderPanel(panel int) string {
	items := u.panelItems(panel)
	picked := u.panelSelection(panel)

	var lines []string
	lines = append(lines, titleStyle.Render(panelTitles[panel]))
	if len(items) == 0 {
		lines = append(lines, faintStyle.Render("(empty)"))
	}
	for i, item := range items {
		label := item.label
		if item.id == picked && picked != "" {
			label = pickedStyle.Render(label + " *")
		}
		if panel == u.focus && i == u.cursors[panel] {
			label = selStyle.Render(label)
		}
		lines = append(lines, label)
	}

	style := panelStyle
	if panel == u.focus {
		style = focusStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (u *ui) renderDeals() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Deals"))
	b.WriteString("\n")
	if len(u.snap.Deals) == 0 {
		b.WriteString(faintStyle.Render("(no deals received)"))
		b.WriteString("\n")
	}
	for _, d := range u.snap.Deals {
		fmt.Fprintf(&b, "%-8s %12s  %s\n", d.Ticker, d.Quantity.String(), d.Date)
	}
	b.WriteString("\n")
	return b.String()
}

func (u *ui) renderChart() string {
	c := u.snap.Chart
	if len(c.Points) == 0 {
		return ""
	}
	last := c.Points[len(c.Points)-1]
	return fmt.Sprintf("%s  %d points, last close %s\n\n",
		titleStyle.Render("Chart: "+c.Ticker), len(c.Points), last.Close.String())
}

func (u *ui) renderReport() string {
	if u.snap.ReportOutput == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Report output"))
	b.WriteString("\n")
	b.WriteString(u.snap.ReportOutput)
	if !strings.HasSuffix(u.snap.ReportOutput, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
