package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const page = `<table>
<tr><th>Team</th><th>Region</th><th>Seed</th><th>PPG</th><th>RPI</th></tr>
<tr><td>Auburn</td><td>South</td><td>1</td><td>15</td><td>1</td></tr>
<tr><td>Duke</td><td>East</td><td>1</td><td>8</td><td>2</td></tr>
</table>`

func TestRun(t *testing.T) {
	convey.Convey("Given a stats page on disk", t, func() {
		dir := t.TempDir()
		in := filepath.Join(dir, "stats.html")
		out := filepath.Join(dir, "2026.yaml")
		convey.So(os.WriteFile(in, []byte(page), 0o600), convey.ShouldBeNil)

		convey.Convey("When required flags are missing", func() {
			err := run([]string{"-in", in})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When importing a partial field", func() {
			err := run([]string{"-in", in, "-id", "2026", "-as-of", "March 15, 2026", "-out", out})

			convey.Convey("Then a skeleton document is written", func() {
				convey.So(err, convey.ShouldBeNil)
				data, readErr := os.ReadFile(out)
				convey.So(readErr, convey.ShouldBeNil)
				doc := string(data)
				convey.So(doc, convey.ShouldContainSubstring, "Auburn")
				convey.So(doc, convey.ShouldContainSubstring, "2026-03-15")
				convey.So(strings.Contains(doc, "results:"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When strict mode sees an incomplete field", func() {
			err := run([]string{"-in", in, "-id", "2026", "-strict", "-out", out})
			convey.So(err, convey.ShouldNotBeNil)
			_, statErr := os.Stat(out)
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})
	})
}
