// Package tui renders the interactive study timer.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

// RunTimerTUI shows the live timer for sessionID until the user finishes or leaves
func RunTimerTUI(ctx context.Context, svc *tracking.Service, sessionID uint) error {
	detail, err := svc.SessionDetail(ctx, sessionID)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewTimerModel(ctx, svc, *detail, time.Now), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(TimerModel)
	if !ok {
		return nil
	}
	sess := m.Session()

	switch {
	case m.finished:
		fmt.Printf("✅ Session #%d saved for %s\n", sess.ID, tracking.SubjectLabel(sess.SubjectID))
		if sess.TotalDurationMinutes != nil {
			fmt.Printf("📊 Study time: %s\n", parser.FormatMinutes(*sess.TotalDurationMinutes))
		}
	case m.timedOut:
		fmt.Printf("⚠️  Session #%d was interrupted: the pause exceeded the allowed length\n", sess.ID)
	case m.exiting:
		fmt.Printf("\n💡 Session #%d is still %s for %s\n", sess.ID, sess.Status, tracking.SubjectLabel(sess.SubjectID))
		fmt.Printf("   Use 'studytrack status' to check it or 'studytrack finish' to save it.\n")
	}
	return nil
}
