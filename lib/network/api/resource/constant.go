package resource

const (
	APIPrefix string = "/api/v1"

	URLProjects      string = "/api/v1/projects/{id}"
	URLVerifications string = "/api/v1/verifications/{id}"
	URLValidators    string = "/api/v1/validators/{id}"
)
