package execute

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	kstrings "github.com/twinsights/modelgw/pkg/utils/strings"
)

// session scopes the shared-volume artifacts of one execution.
//
// Artifacts are namespaced by a random token so that concurrent
// executions never touch each other's files. A session never
// outlives the Run call that created it.
type session struct {
	token string

	// artifact paths as this process sees them
	localIn  string
	localOut string

	// the same artifacts as the container sees them
	containerIn  string
	containerOut string
}

func newSession(volume SharedVolume) (*session, error) {
	token, err := kstrings.RandomHex(32)
	if err != nil {
		return nil, err
	}

	in := "in_" + token + ".json"
	out := "out_" + token + ".json"
	return &session{
		token:        token,
		localIn:      filepath.Join(volume.LocalRoot, in),
		localOut:     filepath.Join(volume.LocalRoot, out),
		containerIn:  path.Join(volume.MountPath, in),
		containerOut: path.Join(volume.MountPath, out),
	}, nil
}

func (s *session) writeInput(input any) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return os.WriteFile(s.localIn, payload, 0644)
}

func (s *session) hasOutput() bool {
	_, err := os.Stat(s.localOut)
	return err == nil
}

// readOutput decodes the output artifact.
//
// # Returns
//
// - any: decoded prediction document.
//
// - bool: false when no output artifact exists.
//
// - error: the artifact exists but is not JSON, or could not be read.
func (s *session) readOutput() (any, bool, error) {
	raw, err := os.ReadFile(s.localOut)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, true, err
	}
	return decoded, true, nil
}

// synthesizeOutput writes raw as the output artifact, so that
// legacy-mode results flow through the same downstream handling
// as current-mode ones.
func (s *session) synthesizeOutput(raw []byte) error {
	return os.WriteFile(s.localOut, raw, 0644)
}

// cleanup removes the session's artifacts. It is unconditional:
// it runs whether the execution succeeded, failed, or timed out.
func (s *session) cleanup() {
	os.Remove(s.localIn)
	os.Remove(s.localOut)
}
