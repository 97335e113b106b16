package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var inlineSeeds = []string{
	"",
	"id: SOAR-1-Login-1\n",
	"id: SOAR-1-Login-1\r\ntext\r\nid: SOAR-1-Login-1\r\n",
	"id: SOAR-1-😀-2\nid: SOAR-1-😀-2",
	"```yaml\n- id: SOAR-1-A-1\n  title: Access\n  applicability: all\n  version: 1\n  regulation: R\n  MyFX: x\n```\n" +
		"```yaml\n- id: SOAR-2-B-1\n  title: Access\n  applicability: all\n  version: 1\n  regulation: R\n  MyFX: x\n```\n",
	"```yaml\n- id: SOAR-5-E-1\n  title: |-\n    Access\n     Control\n  applicability: all\n  version: 2\n  regulation: none\n  MyFX: -\n```",
	"```yaml\n- id: X\n```",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every markdown file under the repository testdata.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(b []byte) []byte {
	if len(b) > maxSeedBytes {
		return b[:maxSeedBytes]
	}
	return b
}
