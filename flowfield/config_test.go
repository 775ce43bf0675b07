package flowfield

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFromYaml(t *testing.T) {
	Convey("When a config file is loaded", t, func() {
		cfg, err := FromYaml("./testdata/config.yaml")
		So(err, ShouldBeNil)

		Convey("Explicit values override the defaults", func() {
			So(cfg.Nx, ShouldEqual, 200)
			So(cfg.Ny, ShouldEqual, 80)
			So(cfg.Tau, ShouldAlmostEqual, 0.7)
			So(cfg.Steps, ShouldEqual, 1500)
			So(cfg.PlotEvery, ShouldEqual, 50)
			So(cfg.Seed, ShouldEqual, 9)
			So(cfg.Obstacle, ShouldResemble, ObstacleConfig{X: 50, Y: 40, Radius: 9})
		})

		Convey("The result passes validation", func() {
			So(cfg.Validate(), ShouldBeNil)
		})
	})

	Convey("When the config file lives outside the working directory", t, func() {
		// The -config flag takes arbitrary paths; loading must not depend
		// on the process CWD.
		src, err := os.ReadFile("./testdata/config.yaml")
		So(err, ShouldBeNil)
		path := filepath.Join(t.TempDir(), "run.yaml")
		So(os.WriteFile(path, src, 0644), ShouldBeNil)

		cfg, err := FromYaml(path)
		So(err, ShouldBeNil)
		So(cfg.Nx, ShouldEqual, 200)
		So(cfg.Seed, ShouldEqual, 9)
	})

	Convey("When the config file is missing", t, func() {
		_, err := FromYaml("./testdata/no_such_file.yaml")
		So(err, ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := DefaultConfig()
		So(cfg.Validate(), ShouldBeNil)

		Convey("Non-positive grid dimensions are rejected", func() {
			bad := cfg
			bad.Ny = 0
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("A grid too narrow for the open boundaries is rejected", func() {
			bad := cfg
			bad.Nx = 2
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("Non-positive tau is rejected", func() {
			bad := cfg
			bad.Tau = 0
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("Non-positive obstacle radius is rejected", func() {
			bad := cfg
			bad.Obstacle.Radius = -1
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("An obstacle center outside the grid is rejected", func() {
			bad := cfg
			bad.Obstacle.X = cfg.Nx
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("A non-positive snapshot cadence is rejected", func() {
			bad := cfg
			bad.PlotEvery = 0
			So(errors.Is(bad.Validate(), ErrConfig), ShouldBeTrue)
		})
	})
}

func TestObstacleMask(t *testing.T) {
	Convey("Given the reference obstacle geometry", t, func() {
		o, err := NewObstacle(400, 100, ObstacleConfig{X: 100, Y: 50, Radius: 13})
		So(err, ShouldBeNil)

		Convey("The threshold is strict: the boundary ring is fluid", func() {
			So(o.Solid(100, 50), ShouldBeTrue)
			So(o.Solid(100+12, 50), ShouldBeTrue)
			So(o.Solid(100+13, 50), ShouldBeFalse)
			So(o.Solid(100, 50+13), ShouldBeFalse)
		})

		Convey("The solid cell count matches a direct scan", func() {
			count := 0
			for y := 0; y < 100; y++ {
				for x := 0; x < 400; x++ {
					if o.Solid(x, y) {
						count++
					}
				}
			}
			So(o.SolidCount(), ShouldEqual, count)
		})
	})

	Convey("Given a center far outside the grid", t, func() {
		_, err := NewObstacle(50, 50, ObstacleConfig{X: 1000, Y: 1000, Radius: 5})

		Convey("The empty mask is surfaced before the run", func() {
			So(errors.Is(err, ErrEmptyObstacle), ShouldBeTrue)
		})
	})
}
