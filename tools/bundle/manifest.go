package bundle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ManifestName is the file describing a bundle, stored in its root.
const ManifestName = "pdxinfo"

// Info is the launcher metadata of a bundle.
type Info struct {
	Name        string
	Author      string
	Description string
	BundleID    string
	Version     string
	BuildNumber int
	ImagePath   string
}

var infoKeys = map[string]func(*Info) *string{
	"name":        func(i *Info) *string { return &i.Name },
	"author":      func(i *Info) *string { return &i.Author },
	"description": func(i *Info) *string { return &i.Description },
	"bundleID":    func(i *Info) *string { return &i.BundleID },
	"version":     func(i *Info) *string { return &i.Version },
	"imagePath":   func(i *Info) *string { return &i.ImagePath },
}

// ReadInfo parses a manifest. Unknown keys are ignored, the launcher adds
// its own over time.
func ReadInfo(r io.Reader) (Info, error) {
	var info Info
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return info, fmt.Errorf("manifest line %q: missing '='", line)
		}
		if key == "buildNumber" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return info, fmt.Errorf("manifest buildNumber: %v", err)
			}
			info.BuildNumber = n
			continue
		}
		if field := infoKeys[key]; field != nil {
			*field(&info) = value
		}
	}
	return info, scanner.Err()
}

// ReadInfoFile parses the manifest of the bundle at dir.
func ReadInfoFile(dir string) (Info, error) {
	f, err := os.Open(filepath.Join(dir, ManifestName))
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return ReadInfo(f)
}

// WriteInfo renders the manifest with stable key order. Empty fields are
// omitted.
func (info Info) WriteInfo(w io.Writer) error {
	fields := make(map[string]string, len(infoKeys)+1)
	for key, field := range infoKeys {
		fields[key] = *field(&info)
	}
	if info.BuildNumber != 0 {
		fields["buildNumber"] = strconv.Itoa(info.BuildNumber)
	}

	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, fields[key]); err != nil {
			return err
		}
	}
	return nil
}
