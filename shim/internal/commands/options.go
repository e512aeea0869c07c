//go:build !linux

package commands

// Option describes an option to a command.
type Option string

// The various types of options.
const (
	SocketOption      Option = "--socket-path"
	ClientIdOption    Option = "--client-id"
	OptionsOption     Option = "--options"
	MetadataOption    Option = "--metadata"
	StateOption       Option = "--state"
	ArtworkUriOption  Option = "--artwork-uri"
	ArtworkDataOption Option = "--artwork-data"
)

// String returns a string representation of the option.
func (a Option) String() string {
	return string(a)
}
