package bindingbasics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/features/bindingbasics"
	"github.com/on-the-ground/composable_ive_go/store"
	"github.com/on-the-ground/composable_ive_go/teststore"
)

func TestBindingBasics_StepCountClampsSlider(t *testing.T) {
	ts := teststore.New(t, bindingbasics.NewState(), bindingbasics.Reducer())

	ts.Send(bindingbasics.SliderValueChanged{Value: 8}, func(s *bindingbasics.State) { s.SliderValue = 8 })
	ts.Send(bindingbasics.StepCountChanged{Count: 3}, func(s *bindingbasics.State) {
		s.StepCount = 3
		s.SliderValue = 3
	})
	ts.Send(bindingbasics.ToggleChanged{IsOn: true}, func(s *bindingbasics.State) { s.ToggleIsOn = true })
}

func TestBindingBasics_SendingEditors(t *testing.T) {
	s := store.New(context.Background(), bindingbasics.NewState(), bindingbasics.Reducer(), store.WithLogger(zap.NewNop()))
	defer s.Close()

	text := store.Sending[bindingbasics.State, bindingbasics.Action](s,
		func(st bindingbasics.State) string { return st.Text },
		func(v string) bindingbasics.Action { return bindingbasics.TextChanged{Text: v} },
	)
	text.Set("hello")

	assert.Equal(t, "hello", text.Get())
	assert.Equal(t, "HeLlO", bindingbasics.Alternate(text.Get()))
}

func TestAlternate(t *testing.T) {
	assert.Equal(t, "", bindingbasics.Alternate(""))
	assert.Equal(t, "AbCd", bindingbasics.Alternate("abcd"))
	assert.Equal(t, "ÉcOlE", bindingbasics.Alternate("école"))
}
