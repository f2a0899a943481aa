//go:build unix

package harness

import "github.com/routelab/editdriver/internal/screen"

// Positions is the catalogued set of canvas click targets for the
// supported planedit version, as offsets from the reference position.
// Scenario scripts click these names instead of raw coordinates so a
// layout change in the editor is fixed in one place.
var Positions = struct {
	Edge0      screen.Offset
	Edge1      screen.Offset
	Edge2      screen.Offset
	Junction0  screen.Offset
	Junction1  screen.Offset
	Route0     screen.Offset
	Container0 screen.Offset
	Stop0      screen.Offset
	Vehicle0   screen.Offset
}{
	Edge0:      screen.Offset{DX: 5, DY: 2},
	Edge1:      screen.Offset{DX: 15, DY: 2},
	Edge2:      screen.Offset{DX: 25, DY: 2},
	Junction0:  screen.Offset{DX: 5, DY: 6},
	Junction1:  screen.Offset{DX: 15, DY: 6},
	Route0:     screen.Offset{DX: 4, DY: 10},
	Container0: screen.Offset{DX: 4, DY: 12},
	Stop0:      screen.Offset{DX: 4, DY: 14},
	Vehicle0:   screen.Offset{DX: 4, DY: 16},
}
