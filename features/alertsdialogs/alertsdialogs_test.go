package alertsdialogs_test

import (
	"testing"

	"github.com/on-the-ground/composable_ive_go/features/alert"
	"github.com/on-the-ground/composable_ive_go/features/alertsdialogs"
	"github.com/on-the-ground/composable_ive_go/teststore"
)

func notice(title string) *alert.State[alertsdialogs.AlertAction] {
	a := alert.New[alertsdialogs.AlertAction](title, "")
	return &a
}

func TestAlert_IncrementReplacesAlert(t *testing.T) {
	store := teststore.New(t, alertsdialogs.State{}, alertsdialogs.Reducer())

	store.Send(alertsdialogs.AlertButtonTapped{}, func(s *alertsdialogs.State) {
		intro := alertsdialogs.IntroAlert
		s.Alert = &intro
	})
	store.Send(alertsdialogs.Alert{Action: alertsdialogs.IntroAlert.Tap(1)}, func(s *alertsdialogs.State) {
		s.Alert = notice("Incremented!")
		s.Count = 1
	})
	store.Send(alertsdialogs.Alert{Action: store.State().Alert.Tap(0)}, func(s *alertsdialogs.State) {
		s.Alert = nil
	})
}

func TestConfirmationDialog_Decrement(t *testing.T) {
	store := teststore.New(t, alertsdialogs.State{}, alertsdialogs.Reducer())

	store.Send(alertsdialogs.ConfirmationDialogButtonTapped{}, func(s *alertsdialogs.State) {
		intro := alertsdialogs.IntroDialog
		s.ConfirmationDialog = &intro
	})
	store.Send(alertsdialogs.ConfirmationDialog{Action: alertsdialogs.IntroDialog.Tap(2)}, func(s *alertsdialogs.State) {
		s.ConfirmationDialog = nil
		s.Alert = notice("Decremented!")
		s.Count = -1
	})
}

func TestConfirmationDialog_Cancel(t *testing.T) {
	store := teststore.New(t, alertsdialogs.State{}, alertsdialogs.Reducer())

	store.Send(alertsdialogs.ConfirmationDialogButtonTapped{}, func(s *alertsdialogs.State) {
		intro := alertsdialogs.IntroDialog
		s.ConfirmationDialog = &intro
	})
	store.Send(alertsdialogs.ConfirmationDialog{Action: alertsdialogs.IntroDialog.Tap(0)}, func(s *alertsdialogs.State) {
		s.ConfirmationDialog = nil
	})
}
