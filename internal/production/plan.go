package production

import (
	"strings"

	"pinpoint/internal/fileutil"
)

// Role names a clip's position in the finished video.
type Role string

const (
	RoleIntro    Role = "intro"
	RoleGameplay Role = "gameplay"
	RoleOutro    Role = "outro"
)

// Source is one clip to include in the output.
type Source struct {
	Role Role
	Path string
}

// Plan returns the ordered sources: intro if its file exists, gameplay always,
// outro if its file exists. Blank intro or outro paths are skipped.
func Plan(intro, gameplay, outro string) []Source {
	sources := make([]Source, 0, 3)
	if optionalExists(intro) {
		sources = append(sources, Source{Role: RoleIntro, Path: intro})
	}
	sources = append(sources, Source{Role: RoleGameplay, Path: gameplay})
	if optionalExists(outro) {
		sources = append(sources, Source{Role: RoleOutro, Path: outro})
	}
	return sources
}

func optionalExists(path string) bool {
	path = strings.TrimSpace(path)
	return path != "" && fileutil.Exists(path)
}
