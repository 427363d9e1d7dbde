package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

var errNotInitialized = errors.New("task services not initialized")

func requireTaskServices() error {
	if DB == nil || Auth == nil {
		return errNotInitialized
	}
	return nil
}

func localizer() *core.Localizer {
	if Localizer != nil {
		return Localizer
	}
	l, _ := core.NewLocalizer("en")
	return l
}

// alertResult prints a success alert to w and returns an error alert as an
// error, so the command exits non-zero.
func alertResult(w io.Writer, a *models.MessageAlert) error {
	if a == nil {
		return nil
	}
	if err := alertError(a); err != nil {
		return err
	}
	fmt.Fprintln(w, localizer().Alert(a))
	return nil
}

// alertError returns an error alert as an error and ignores the rest.
func alertError(a *models.MessageAlert) error {
	if a == nil || a.Error == nil {
		return nil
	}
	return errors.New(localizer().Alert(a))
}

// drainEvents returns the events already queued on ch without blocking.
func drainEvents(ch <-chan models.UiEvent) []models.UiEvent {
	var out []models.UiEvent
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}
