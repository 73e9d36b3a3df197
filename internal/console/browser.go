// ABOUTME: Authenticated browser over the z11n entity screens
// ABOUTME: Menu, rows, and actions are filtered through the grant gate

package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/z11n/z11n-console/internal/api"
	"github.com/z11n/z11n-console/internal/authz"
	"github.com/z11n/z11n-console/internal/session"
)

const pageSize = 15

type screenID int

const (
	screenAgents screenID = iota
	screenHosts
	screenTasks
	screenRoles
	screenUsers
	screenSystem
)

// screenDef binds a screen to the server operations it needs. listMethod and
// listPath decide menu visibility; deletePath (when set) gates the delete key.
type screenDef struct {
	id         screenID
	title      string
	hotkey     string
	listMethod string
	listPath   string
	deletePath string
}

var screenDefs = []screenDef{
	{screenAgents, "Agents", "1", "GET", "/api/agents", "/api/agents/{id}"},
	{screenHosts, "Hosts", "2", "GET", "/api/hosts", "/api/hosts/{id}"},
	{screenTasks, "LLM Tasks", "3", "GET", "/api/llm_tasks", "/api/llm_tasks/{id}"},
	{screenRoles, "Roles", "4", "GET", "/api/roles", "/api/roles/{id}"},
	{screenUsers, "Users", "5", "GET", "/api/users", "/api/users/{id}"},
	{screenSystem, "System", "6", "GET", "/api/system/title", ""},
}

// tableDataMsg carries one loaded page of rows for a screen.
type tableDataMsg struct {
	screen  screenID
	seq     int
	columns []table.Column
	rows    []table.Row
	page    api.Page
	err     error
}

// deleteDoneMsg reports a delete attempt; the screen reloads on success.
type deleteDoneMsg struct {
	screen screenID
	id     string
	err    error
}

// systemLoadedMsg carries the branding settings for the system screen.
type systemLoadedMsg struct {
	seq      int
	settings *api.SystemSettings
	err      error
}

type browserModel struct {
	client   *api.Client
	gate     *authz.Gate
	sessions session.Store

	active   screenID
	tbl      table.Model
	page     uint64
	pageInfo api.Page
	settings *api.SystemSettings

	seq     int
	loading bool
	status  string

	width  int
	height int
}

func newBrowserModel(client *api.Client, gate *authz.Gate) browserModel {
	tbl := table.New(table.WithFocused(true), table.WithHeight(pageSize+1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	m := browserModel{
		client:   client,
		gate:     gate,
		sessions: client.Sessions(),
		tbl:      tbl,
		seq:      1,
		loading:  true,
	}
	m.active = m.firstPermittedScreen()
	return m
}

func (m browserModel) Init() tea.Cmd {
	return loadCmd(m.client, m.active, m.page, m.seq)
}

// firstPermittedScreen picks the landing screen: the first one the grant set
// allows listing.
func (m browserModel) firstPermittedScreen() screenID {
	for _, def := range screenDefs {
		if m.gate.Permitted(def.listMethod, def.listPath) {
			return def.id
		}
	}
	return screenAgents
}

func (m browserModel) def() screenDef {
	return screenDefs[m.active]
}

// reload supersedes any in-flight fetch and loads the active screen's
// current page.
func (m *browserModel) reload() tea.Cmd {
	m.seq++
	m.loading = true
	return loadCmd(m.client, m.active, m.page, m.seq)
}

func loadCmd(client *api.Client, screen screenID, page uint64, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if screen == screenSystem {
			settings, err := client.GetSystemSettings(ctx)
			return systemLoadedMsg{seq: seq, settings: settings, err: err}
		}
		columns, rows, pg, err := fetchRows(ctx, client, screen, page)
		return tableDataMsg{screen: screen, seq: seq, columns: columns, rows: rows, page: pg, err: err}
	}
}

// fetchRows loads one page of an entity listing and flattens it for the
// table widget. The first column is always the row's server-side id.
func fetchRows(ctx context.Context, client *api.Client, screen screenID, page uint64) ([]table.Column, []table.Row, api.Page, error) {
	switch screen {
	case screenAgents:
		res, err := client.ListAgents(ctx, api.AgentQuery{Page: page, Size: pageSize})
		if err != nil {
			return nil, nil, api.Page{}, err
		}
		columns := []table.Column{
			{Title: "ID", Width: 24},
			{Title: "Version", Width: 12},
			{Title: "Created", Width: 18},
			{Title: "Updated", Width: 18},
		}
		rows := make([]table.Row, 0, len(res.Agents))
		for _, a := range res.Agents {
			rows = append(rows, table.Row{a.ID, a.Version, formatMillis(a.CreatedAt), formatMillis(a.UpdatedAt)})
		}
		return columns, rows, res.Page, nil

	case screenHosts:
		res, err := client.ListHosts(ctx, api.HostQuery{Page: page, Size: pageSize})
		if err != nil {
			return nil, nil, api.Page{}, err
		}
		columns := []table.Column{
			{Title: "Agent", Width: 24},
			{Title: "Name", Width: 18},
			{Title: "Hostname", Width: 18},
			{Title: "OS", Width: 20},
			{Title: "Arch", Width: 8},
		}
		rows := make([]table.Row, 0, len(res.Hosts))
		for _, h := range res.Hosts {
			rows = append(rows, table.Row{h.AgentID, h.Name, h.HostName, h.OSVersion, h.CPUArch})
		}
		return columns, rows, res.Page, nil

	case screenTasks:
		res, err := client.ListLLMTasks(ctx, api.LLMTaskQuery{Page: page, Size: pageSize})
		if err != nil {
			return nil, nil, api.Page{}, err
		}
		columns := []table.Column{
			{Title: "ID", Width: 26},
			{Title: "Model", Width: 16},
			{Title: "Prompt", Width: 30},
			{Title: "Pushed", Width: 18},
			{Title: "Answered", Width: 18},
		}
		rows := make([]table.Row, 0, len(res.Tasks))
		for _, t := range res.Tasks {
			answered := "-"
			if t.RspPushAt != nil {
				answered = formatMillis(*t.RspPushAt)
			}
			rows = append(rows, table.Row{t.ID, t.Model, truncate(t.Prompt, 30), formatMillis(t.ReqPushAt), answered})
		}
		return columns, rows, res.Page, nil

	case screenRoles:
		res, err := client.ListRoles(ctx, api.RoleQuery{Page: page, Size: pageSize})
		if err != nil {
			return nil, nil, api.Page{}, err
		}
		columns := []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 24},
			{Title: "Grants", Width: 8},
		}
		rows := make([]table.Row, 0, len(res.Roles))
		for _, r := range res.Roles {
			rows = append(rows, table.Row{strconv.FormatInt(int64(r.ID), 10), r.Name, strconv.Itoa(len(r.RestfulAPIs))})
		}
		return columns, rows, res.Page, nil

	case screenUsers:
		res, err := client.ListUsers(ctx, api.UserQuery{Page: page, Size: pageSize})
		if err != nil {
			return nil, nil, api.Page{}, err
		}
		columns := []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Username", Width: 20},
			{Title: "Roles", Width: 40},
		}
		rows := make([]table.Row, 0, len(res.Users))
		for _, u := range res.Users {
			names := make([]string, 0, len(u.Roles))
			for _, r := range u.Roles {
				names = append(names, r.Name)
			}
			rows = append(rows, table.Row{strconv.FormatInt(int64(u.ID), 10), u.Username, strings.Join(names, ", ")})
		}
		return columns, rows, res.Page, nil
	}
	return nil, nil, api.Page{}, fmt.Errorf("unknown screen %d", screen)
}

// deleteSelected removes the highlighted row, when the grant set allows it.
func (m *browserModel) deleteSelected() tea.Cmd {
	def := m.def()
	if def.deletePath == "" {
		return nil
	}
	if !m.gate.Permitted("DELETE", def.deletePath) {
		m.status = "not authorized to delete here"
		return nil
	}
	row := m.tbl.SelectedRow()
	if len(row) == 0 {
		return nil
	}
	id := row[0]
	client := m.client
	screen := m.active

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		var err error
		switch screen {
		case screenAgents:
			err = client.DeleteAgent(ctx, id)
		case screenHosts:
			err = client.DeleteHost(ctx, id)
		case screenTasks:
			err = client.DeleteLLMTask(ctx, id)
		case screenRoles:
			err = deleteByInt32(ctx, id, client.DeleteRole)
		case screenUsers:
			err = deleteByInt32(ctx, id, client.DeleteUser)
		}
		return deleteDoneMsg{screen: screen, id: id, err: err}
	}
}

func deleteByInt32(ctx context.Context, id string, del func(context.Context, int32) error) error {
	n, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		return fmt.Errorf("parsing row id %q: %w", id, err)
	}
	return del(ctx, int32(n))
}

// switchTo changes the active screen after a gate check.
func (m *browserModel) switchTo(id screenID) tea.Cmd {
	def := screenDefs[id]
	if !m.gate.Permitted(def.listMethod, def.listPath) {
		m.status = fmt.Sprintf("not authorized to view %s", def.title)
		return nil
	}
	m.active = id
	m.page = 0
	m.status = ""
	m.tbl.SetRows(nil)
	return m.reload()
}

func (m browserModel) Update(msg tea.Msg) (browserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tbl.SetWidth(msg.Width - 4)
		return m, nil

	case tableDataMsg:
		if msg.seq != m.seq || msg.screen != m.active {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
			return m, nil
		}
		m.tbl.SetColumns(msg.columns)
		m.tbl.SetRows(msg.rows)
		m.pageInfo = msg.page
		m.status = ""
		return m, nil

	case systemLoadedMsg:
		if msg.seq != m.seq || m.active != screenSystem {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
			return m, nil
		}
		m.settings = msg.settings
		m.status = ""
		return m, nil

	case deleteDoneMsg:
		if msg.screen != m.active {
			return m, nil
		}
		if msg.err != nil {
			m.status = fmt.Sprintf("delete of %s failed: %v", msg.id, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %s", msg.id)
		return m, m.reload()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.reload()
		case "n":
			if m.page+1 < m.pageInfo.TotalPages {
				m.page++
				return m, m.reload()
			}
			return m, nil
		case "p":
			if m.page > 0 {
				m.page--
				return m, m.reload()
			}
			return m, nil
		case "d":
			return m, m.deleteSelected()
		default:
			for _, def := range screenDefs {
				if msg.String() == def.hotkey {
					return m, m.switchTo(def.id)
				}
			}
		}
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	header := titleStyle.Render("z11n console") + "  " +
		statusStyle.Render(m.sessions.DisplayName())

	var menu []string
	for _, def := range screenDefs {
		if !m.gate.Permitted(def.listMethod, def.listPath) {
			continue
		}
		label := fmt.Sprintf("%s %s", def.hotkey, def.title)
		if def.id == m.active {
			menu = append(menu, menuActiveStyle.Render(label))
		} else {
			menu = append(menu, menuStyle.Render(label))
		}
	}

	var body string
	switch {
	case m.loading:
		body = statusStyle.Render("loading...")
	case m.active == screenSystem:
		body = m.systemView()
	default:
		body = m.tbl.View() + "\n" + statusStyle.Render(m.pageLine())
	}

	lines := []string{header, strings.Join(menu, "  "), "", body}
	if m.status != "" {
		lines = append(lines, "", noticeStyle.Render(m.status))
	}
	lines = append(lines, "", helpStyle.Render("n/p: page • r: reload • d: delete • l: sign out • ctrl+c: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m browserModel) systemView() string {
	if m.settings == nil {
		return statusStyle.Render("no settings loaded")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Title: ")+m.settings.Title,
		labelStyle.Render("Icon:  ")+byteSize(m.settings.Icon),
		labelStyle.Render("Logo:  ")+byteSize(m.settings.Logo),
	)
}

func (m browserModel) pageLine() string {
	if m.pageInfo.TotalPages == 0 {
		return "no rows"
	}
	return fmt.Sprintf("page %d/%d • %d total", m.page+1, m.pageInfo.TotalPages, m.pageInfo.TotalElements)
}

func byteSize(b []byte) string {
	if len(b) == 0 {
		return "not set"
	}
	return fmt.Sprintf("%d bytes", len(b))
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
