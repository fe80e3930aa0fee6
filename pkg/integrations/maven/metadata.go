package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Symbolic versions answered from repository metadata.
const (
	VersionLatest  = "LATEST"
	VersionRelease = "RELEASE"
)

type repoMetadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// versionList is the cached form of one repository's metadata.
type versionList struct {
	Latest   string   `json:"latest,omitempty"`
	Release  string   `json:"release,omitempty"`
	Versions []string `json:"versions"`
}

func parseMetadata(data []byte) (versionList, error) {
	var md repoMetadata
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	if err := dec.Decode(&md); err != nil {
		return versionList{}, fmt.Errorf("decode maven-metadata.xml: %w", err)
	}
	out := versionList{
		Latest:  strings.TrimSpace(md.Versioning.Latest),
		Release: strings.TrimSpace(md.Versioning.Release),
	}
	for _, v := range md.Versioning.Versions {
		if v = strings.TrimSpace(v); v != "" {
			out.Versions = append(out.Versions, v)
		}
	}
	return out, nil
}

// symbolic returns the version a LATEST or RELEASE keyword names.
func (l versionList) symbolic(keyword string) string {
	switch keyword {
	case VersionLatest:
		if l.Latest != "" {
			return l.Latest
		}
	case VersionRelease:
		if l.Release != "" {
			return l.Release
		}
	}
	return ""
}
