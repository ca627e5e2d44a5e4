package static

// Set at build time with -ldflags "-X ...static.Version=..."
var (
	Version = "dev"
	Commit  = "none"
)

// Client library tag sent with scan and biometric payloads
const ClientLibrary = "go-sdk"

func UserAgent() string {
	return "idanalyzer-go/" + Version
}
