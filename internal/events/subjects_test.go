package events

import (
	"strings"
	"testing"
)

func TestSubjectsFallUnderStream(t *testing.T) {
	prefix := strings.TrimSuffix(StreamSubjects, ">")
	for _, s := range []string{
		SubjectAssessmentScored("abc"),
		SubjectAggregateScored("abc"),
		SubjectBatchScored("abc"),
	} {
		if !strings.HasPrefix(s, prefix) {
			t.Errorf("subject %q is not captured by stream subjects %q", s, StreamSubjects)
		}
		if !strings.Contains(s, ".abc.") {
			t.Errorf("subject %q does not embed the id", s)
		}
	}
}
