package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/fanhop/internal/domain/edition"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given the landing page over the embedded editions", t, func() {
		eds, err := edition.LoadEmbedded()
		So(err, ShouldBeNil)
		catalog, err := edition.NewCatalog("2025", eds...)
		So(err, ShouldBeNil)

		mux := http.NewServeMux()
		Register(context.Background(), mux, catalog)

		Convey("Then GET / renders editions and presets", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			body := w.Body.String()
			So(body, ShouldContainSubstring, "/simulate?e=2025")
			So(body, ShouldContainSubstring, "/leaderboard?e=2025")
			So(body, ShouldContainSubstring, "preset=chalk")
			So(body, ShouldContainSubstring, "/api-docs")
		})

		Convey("And it does not swallow other paths", func() {
			req := httptest.NewRequest(http.MethodGet, "/some-asset", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And it only answers GET", func() {
			req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
