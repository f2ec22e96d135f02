package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	"github.com/AccelByte/extend-idle-progression/pkg/session"
)

const (
	frameInterval = 100 * time.Millisecond
	maxShopKeys   = 9

	// fadeOpacity is where a notification starts drawing dimmed.
	fadeOpacity = 0.3
)

var (
	styleDefault    = tcell.StyleDefault
	styleTitle      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMoney      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleAffordable = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLocked     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

var notificationStyles = map[domain.Priority]tcell.Style{
	domain.PriorityNormal:      tcell.StyleDefault.Foreground(tcell.ColorWhite),
	domain.PriorityRandom:      tcell.StyleDefault.Foreground(tcell.ColorSilver).Italic(true),
	domain.PriorityStory:       tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
	domain.PriorityAchievement: tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true),
	domain.PriorityPromotion:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true).Reverse(true),
}

// ui draws one session and turns key presses into engine actions.
type ui struct {
	screen  tcell.Screen
	manager *session.Manager
	session *session.Session
	logger  *slog.Logger

	// status is feedback for the last key press.
	status string
}

func newUI(screen tcell.Screen, manager *session.Manager, s *session.Session, log *slog.Logger) *ui {
	return &ui{
		screen:  screen,
		manager: manager,
		session: s,
		logger:  log,
	}
}

// run polls input and redraws every frame until the player quits or ctx ends.
func (u *ui) run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	u.draw()
	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-events:
			if !u.handleEvent(ctx, ev) {
				return
			}
			u.draw()

		case <-ticker.C:
			u.session.Tick()
			u.draw()
		}
	}
}

// handleEvent returns false when the player asked to quit.
func (u *ui) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			u.click()
			return true
		case tcell.KeyRune:
		default:
			return true
		}

		r := ev.Rune()
		switch {
		case r == 'q':
			return false
		case r == ' ':
			u.click()
		case r == 's':
			u.save(ctx)
		case r >= '1' && r <= '9':
			u.purchase(int(r - '1'))
		}

	case *tcell.EventResize:
		u.screen.Sync()
	}

	return true
}

func (u *ui) click() {
	gain := u.session.Click()
	u.status = fmt.Sprintf("+%.2f€", gain)
}

func (u *ui) purchase(index int) {
	upgrades := u.session.View().Upgrades
	if index < 0 || index >= len(upgrades) {
		return
	}
	name := upgrades[index].Name

	ok, err := u.session.Purchase(name)
	switch {
	case err != nil:
		u.status = err.Error()
	case ok:
		u.status = fmt.Sprintf("Acheté : %s", name)
	default:
		u.status = fmt.Sprintf("Pas assez d'argent pour %s", name)
	}
}

func (u *ui) save(ctx context.Context) {
	if err := u.manager.Save(ctx, u.session.ID); err != nil {
		u.logger.Error("Manual save failed", "error", err)
		u.status = "Échec de la sauvegarde"
		return
	}
	u.status = "Partie sauvegardée"
}

func (u *ui) draw() {
	u.screen.Clear()
	_, height := u.screen.Size()
	st := u.session.Status()

	drawText(u.screen, 1, 0, styleTitle, fmt.Sprintf("Bureau Clicker  |  %s", st.CurrentRank))
	drawText(u.screen, 1, 2, styleMoney, fmt.Sprintf("Argent : %.2f€", st.Money))
	drawText(u.screen, 1, 3, styleDefault, fmt.Sprintf("Revenu passif : %.2f€/s", st.PassiveIncome))
	drawText(u.screen, 1, 4, styleDefault, fmt.Sprintf("Combo : x%.1f", st.ScoreMultiplier))
	if st.NextRank != "" {
		drawText(u.screen, 1, 5, styleDefault, fmt.Sprintf("Prochain rang : %s à %.0f€", st.NextRank, st.NextRankThreshold))
	} else {
		drawText(u.screen, 1, 5, styleDefault, "Sommet de l'entreprise atteint")
	}

	drawText(u.screen, 1, 7, styleTitle, "Améliorations")
	for i, up := range st.Upgrades {
		if i >= maxShopKeys {
			break
		}
		style := styleLocked
		if up.Affordable {
			style = styleAffordable
		}
		line := fmt.Sprintf("[%d] %-24s %10.0f€  x%-3d +%.1f/s", i+1, up.Name, up.Cost, up.Count, up.ProductivityBoost)
		drawText(u.screen, 1, 8+i, style, line)
	}

	if n, ok := u.session.Pending(); ok {
		style, found := notificationStyles[n.Priority]
		if !found {
			style = styleDefault
		}
		if n.Opacity(st.Now) < fadeOpacity {
			style = style.Dim(true)
		}
		row := height - 5
		if n.Title != "" {
			drawText(u.screen, 1, row, style, n.Title)
			row++
		}
		drawText(u.screen, 1, row, style, n.Description)
	}

	drawText(u.screen, 1, height-2, styleDefault, u.status)
	drawText(u.screen, 1, height-1, styleHelp, "[espace] travailler  [1-9] acheter  [s] sauvegarder  [q] quitter")

	u.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	width, height := screen.Size()
	if y < 0 || y >= height {
		return
	}
	for _, r := range text {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
