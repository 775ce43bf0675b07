package main

import (
	"flag"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestListenAddr(t *testing.T) {
	Convey("Given host and port flag values", t, func() {
		So(flag.Set("host", "10.0.0.5"), ShouldBeNil)
		So(flag.Set("port", "9090"), ShouldBeNil)
		So(listenAddr(), ShouldEqual, "10.0.0.5:9090")

		Convey("An empty host binds every interface", func() {
			So(flag.Set("host", ""), ShouldBeNil)
			So(listenAddr(), ShouldEqual, ":9090")
		})
	})
}
