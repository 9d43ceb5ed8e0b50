package events

const (
	StreamName     = "BRIEFMPI_EVENTS"
	StreamSubjects = "mpi.>"
	StreamMaxAge   = "168h" // 7 days
)

func SubjectAssessmentScored(id string) string { return "mpi.assessment." + id + ".scored" }
func SubjectAggregateScored(id string) string  { return "mpi.aggregate." + id + ".scored" }
func SubjectBatchScored(id string) string      { return "mpi.batch." + id + ".scored" }
