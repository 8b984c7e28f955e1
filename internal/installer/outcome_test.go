package installer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqasim81/schema-installer/internal/installer"
)

func TestOutcome_Result(t *testing.T) {
	t.Parallel()

	success := &installer.Outcome{Status: installer.StatusSuccess, Message: "Database installation complete!"}
	failure := &installer.Outcome{Status: installer.StatusFailure, Message: "Database installation incomplete!"}

	tests := []struct {
		name    string
		outcome *installer.Outcome
		note    *installer.Annotation
		want    string
	}{
		{
			name:    "success without annotation",
			outcome: success,
			want:    "Database installation complete!",
		},
		{
			name:    "success with full annotation",
			outcome: success,
			note:    &installer.Annotation{File: "index.php", LineStart: 3, LineEnd: 9},
			want: "Database installation complete!\n" +
				"You can remove line in index.php start from line 3 until line 9\n" +
				" (you can remove between that line)",
		},
		{
			name:    "success with file only",
			outcome: success,
			note:    &installer.Annotation{File: "bootstrap.sh"},
			want: "Database installation complete!\n" +
				"You can remove line in bootstrap.sh\n" +
				" (you can remove between that line)",
		},
		{
			name:    "annotation without file is ignored",
			outcome: success,
			note:    &installer.Annotation{LineStart: 1, LineEnd: 2},
			want:    "Database installation complete!",
		},
		{
			name:    "failure never carries the reminder",
			outcome: failure,
			note:    &installer.Annotation{File: "index.php", LineStart: 3, LineEnd: 9},
			want:    "Database installation incomplete!",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.outcome.Result(tt.note))
		})
	}
}

func TestOutcome_Succeeded(t *testing.T) {
	t.Parallel()

	for status, want := range map[installer.Status]bool{
		installer.StatusPending: false,
		installer.StatusRunning: false,
		installer.StatusSuccess: true,
		installer.StatusFailure: false,
	} {
		assert.Equal(t, want, (&installer.Outcome{Status: status}).Succeeded(), status)
	}
}
