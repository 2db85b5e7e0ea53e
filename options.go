package wad

import "github.com/sirupsen/logrus"

// Option configures a WAD at open time.
type Option func(*WAD)

// WithLevelLumps replaces DefaultLevelLumps as the set of lump names grouped
// under a level marker.
func WithLevelLumps(names ...string) Option {
	return func(w *WAD) {
		w.levelLumps = newLumpSet(names...)
	}
}

// WithExtraLevelLumps adds names to the set of lump names grouped under a
// level marker.
func WithExtraLevelLumps(names ...string) Option {
	return func(w *WAD) {
		w.levelLumps.add(names...)
	}
}

// WithLogger sets the logger for this archive only. By default the package
// logger installed with SetLogger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *WAD) {
		if l != nil {
			w.log = l
		}
	}
}
