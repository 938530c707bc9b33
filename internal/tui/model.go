package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docindex/internal/domain"
	"docindex/internal/pipeline"
)

// StageMsg announces that a pipeline stage has started.
type StageMsg pipeline.Stage

// ProgressMsg reports embedding progress.
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg carries the final report (or the run error) of the pipeline.
type DoneMsg struct {
	Report domain.Report
	Err    error
}

// Model renders a live view of one indexing run. The runner delivers
// StageMsg, ProgressMsg and DoneMsg through Program.Send.
type Model struct {
	filename string

	spinner  spinner.Model
	progress progress.Model

	stage    pipeline.Stage
	done     int
	total    int
	finished bool
	report   domain.Report
	err      error
}

// New creates a progress model for one document.
func New(filename string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		filename: filename,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 8
		if w < 10 {
			w = 10
		}
		m.progress.Width = w
		return m, nil
	case StageMsg:
		m.stage = pipeline.Stage(msg)
		return m, nil
	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		return m, nil
	case DoneMsg:
		m.finished = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	header := headerStyle.Render("Document Indexing") + "  " + dimStyle.Render(m.filename)
	if m.finished {
		return header + "\n\n" + m.renderReport() + "\n"
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), stageLabel(m.stage))
	if m.stage == pipeline.StageEmbed && m.total > 0 {
		percent := float64(m.done) / float64(m.total)
		line += fmt.Sprintf("\n\n  %s %d/%d", m.progress.ViewAs(percent), m.done, m.total)
	}
	return header + "\n\n" + line + "\n"
}

func (m Model) renderReport() string {
	if m.err != nil {
		return errorStyle.Render("Failed: "+m.err.Error()) + "\n" + m.renderCounts()
	}
	var status string
	switch m.report.Status {
	case domain.RunSuccess:
		status = okStyle.Render("Completed")
	case domain.RunPartial:
		status = warnStyle.Render("Completed with failures")
	default:
		status = errorStyle.Render(string(m.report.Status))
	}
	return status + "\n" + m.renderCounts()
}

func (m Model) renderCounts() string {
	r := m.report
	return dimStyle.Render(fmt.Sprintf(
		"  strategy=%s  characters=%d  chunks=%d  embedded=%d  failed=%d  saved=%d",
		r.Strategy, r.TextLength, r.ChunksCreated, r.EmbeddedOK, r.EmbeddedFailed, r.ChunksSaved))
}

func stageLabel(s pipeline.Stage) string {
	switch s {
	case pipeline.StageExtract:
		return "Extracting text..."
	case pipeline.StageChunk:
		return "Chunking..."
	case pipeline.StageEmbed:
		return "Generating embeddings..."
	case pipeline.StagePersist:
		return "Saving to store..."
	default:
		return "Starting..."
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)
