package exitcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/dayflow/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"plain error", stderrors.New("something broke"), GeneralError},
		{"provider auth", errors.NewProviderAuthError("anthropic"), ProviderError},
		{"provider bad response", errors.NewProviderBadResponseError("openai", nil), ProviderError},
		{"corrupt session store", errors.NewSessionStoreCorruptError("/tmp/session.json"), StateError},
		{"history failure", errors.New(errors.ErrCodeHistoryQuery, "query failed"), StateError},
		{"empty plan", errors.NewPlanEmptyError(), UsageError},
		{"clarify misuse", errors.New(errors.ErrCodeClarifyNotAwaiting, "no open question"), UsageError},
		{"session transition", errors.New(errors.ErrCodeSessionBadTransition, "cannot start"), GeneralError},
		{"wrapped provider error", fmt.Errorf("running plan: %w", errors.NewProviderAuthError("gemini")), ProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
