// Command healthtop is a small terminal dashboard over a healthcheckd
// status endpoint, shaped after xtop's bubbletea model: a tick drives a
// background fetch, the fetch result becomes a message, Update folds
// messages into model state, View renders it.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kflynn/healthcheckd/internal/healthcheck"
	"github.com/kflynn/healthcheckd/pkg/statusclient"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tickMsg time.Time

type snapshotMsg struct {
	peers []healthcheck.PeerStatus
	err   error
}

type model struct {
	client   *statusclient.Client
	interval time.Duration
	peers    []healthcheck.PeerStatus
	err      error
	paused   bool
}

func newModel(client *statusclient.Client, interval time.Duration) model {
	return model{client: client, interval: interval}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(m.interval), fetch(m.client))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetch(client *statusclient.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		peers, err := client.Status(ctx)
		return snapshotMsg{peers: peers, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
		}
	case tickMsg:
		if m.paused {
			return m, tick(m.interval)
		}
		return m, tea.Batch(tick(m.interval), fetch(m.client))
	case snapshotMsg:
		m.peers = msg.peers
		m.err = msg.err
	}
	return m, nil
}

func (m model) View() string {
	var out string
	out += headerStyle.Render(fmt.Sprintf(" healthtop — %d peers ", len(m.peers))) + "\n\n"

	if m.err != nil {
		out += downStyle.Render("error: "+m.err.Error()) + "\n"
		return out
	}

	peers := make([]healthcheck.PeerStatus, len(m.peers))
	copy(peers, m.peers)
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].Upstream != peers[j].Upstream {
			return peers[i].Upstream < peers[j].Upstream
		}
		return peers[i].Addr < peers[j].Addr
	})

	out += fmt.Sprintf("%-16s %-22s %-10s %-14s %-8s %5s %10s\n",
		"UPSTREAM", "ADDR", "STATE", "OWNER", "LAST", "RUN", "CONFID")
	for _, p := range peers {
		state := okStyle.Render("up")
		if !p.Enabled {
			state = dimStyle.Render("disabled")
		} else if p.Down {
			state = downStyle.Render("down")
		}
		out += fmt.Sprintf("%-16s %-22s %-10s %-14s %-8s %5d %10.2f\n",
			p.Upstream, p.Addr, state, p.Owner, p.LastOutcome, p.RunLength, p.Confidence)
	}

	status := "live"
	if m.paused {
		status = "paused"
	}
	out += "\n" + dimStyle.Render(fmt.Sprintf("p:pause q:quit  [%s]", status))
	return out
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: healthtop <status-base-url>")
		os.Exit(1)
	}

	client := statusclient.NewClient(os.Args[1])
	m := newModel(client, 2*time.Second)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "healthtop failed: %v\n", err)
		os.Exit(1)
	}
}
