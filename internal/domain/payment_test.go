package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentState_Next(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentState
		trigger PaymentTrigger
		want    PaymentState
		wantErr bool
	}{
		{"proof on pending", PaymentStatePending, TriggerProofSubmitted, PaymentStateInReview, false},
		{"deadline on pending", PaymentStatePending, TriggerDeadlineElapsed, PaymentStateExpired, false},
		{"force reject pending", PaymentStatePending, TriggerRejected, PaymentStateRejected, false},
		{"approve in review", PaymentStateInReview, TriggerApproved, PaymentStateApproved, false},
		{"reject in review", PaymentStateInReview, TriggerRejected, PaymentStateRejected, false},
		{"approve pending", PaymentStatePending, TriggerApproved, "", true},
		{"proof twice", PaymentStateInReview, TriggerProofSubmitted, "", true},
		{"deadline in review", PaymentStateInReview, TriggerDeadlineElapsed, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Next(tt.trigger)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentState_TerminalStatesHaveNoTransitions(t *testing.T) {
	triggers := []PaymentTrigger{TriggerProofSubmitted, TriggerDeadlineElapsed, TriggerApproved, TriggerRejected}

	for _, state := range PaymentStates {
		if !state.IsTerminal() {
			continue
		}
		for _, trigger := range triggers {
			_, err := state.Next(trigger)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s on %s", trigger, state)
		}
	}
}

func TestPaymentState_HoldsNumbers(t *testing.T) {
	for _, state := range PaymentStates {
		assert.Equal(t, !state.ReleasesNumbers(), state.HoldsNumbers(), state.String())
	}
}

func TestPayment_IsOverdue(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &Payment{CreatedAt: created.Unix()}

	assert.False(t, p.IsOverdue(created.Add(599*time.Second), DefaultReservationDeadline))
	assert.True(t, p.IsOverdue(created.Add(600*time.Second), DefaultReservationDeadline))
	assert.True(t, p.IsOverdue(created.Add(time.Hour), DefaultReservationDeadline))
}

func TestDecision_Trigger(t *testing.T) {
	assert.Equal(t, TriggerApproved, DecisionApprove.Trigger())
	assert.Equal(t, TriggerRejected, DecisionReject.Trigger())
	assert.False(t, Decision("maybe").IsValid())
}
