package common

const (
	// Values of the VOEvent "role" attribute, per the VOEvent 2.0 schema.
	RoleObservation = "observation"
	RolePrediction  = "prediction"
	RoleUtility     = "utility"
	RoleTest        = "test"

	// Values of the "cite" attribute on Citations/EventIVORN entries.
	CiteTypeFollowup   = "followup"
	CiteTypeRetraction = "retraction"
	CiteTypeSupersedes = "supersedes"

	// Registry prefix shared by every IVORN (IVOA identifier scheme).
	IvornPrefix = "ivo://"
)
