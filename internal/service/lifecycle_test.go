package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

func TestNextStatus(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		from    domain.SessionStatus
		trigger lifecycleTrigger
		want    domain.SessionStatus
		wantErr bool
	}{
		{domain.SessionStatusCreated, triggerFirstMessage, domain.SessionStatusActive, false},
		{domain.SessionStatusActive, triggerFirstMessage, domain.SessionStatusActive, false},
		{domain.SessionStatusEnded, triggerFirstMessage, "", true},
		{domain.SessionStatusCreated, triggerEnd, domain.SessionStatusEnded, false},
		{domain.SessionStatusActive, triggerEnd, domain.SessionStatusEnded, false},
		{domain.SessionStatusEnded, triggerEnd, "", true},
	}
	for _, tc := range cases {
		got, err := nextStatus(ctx, tc.from, tc.trigger)
		if tc.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidState, "%s/%s", tc.from, tc.trigger)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.from, tc.trigger)
	}
}
