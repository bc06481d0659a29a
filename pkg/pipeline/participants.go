package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	terr "github.com/matzehuels/townsquare/pkg/errors"
)

// participantsFile is the on-disk seating list:
//
//	[[participant]]
//	name = "Ada"
//	reminders = 3
//	expanded = true
type participantsFile struct {
	Participants []Participant `toml:"participant"`
}

// FromNames returns participants without reminders.
func FromNames(names ...string) []Participant {
	out := make([]Participant, len(names))
	for i, n := range names {
		out[i] = Participant{Name: n}
	}
	return out
}

// Generate returns n placeholder participants named "Player 1" to "Player n".
func Generate(n int) []Participant {
	out := make([]Participant, max(0, n))
	for i := range out {
		out[i] = Participant{Name: fmt.Sprintf("Player %d", i+1)}
	}
	return out
}

// ReadParticipants decodes a seating list.
func ReadParticipants(r io.Reader) ([]Participant, error) {
	var f participantsFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, terr.Wrap(terr.ErrCodeInvalidInput, err, "decode participants")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, terr.New(terr.ErrCodeInvalidInput, "unknown key %q in participants", undecoded[0].String())
	}
	return f.Participants, nil
}

// LoadParticipants reads the seating list at path.
func LoadParticipants(path string) ([]Participant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, terr.Wrap(terr.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadParticipants(f)
}
