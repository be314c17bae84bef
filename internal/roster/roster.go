// Package roster holds the fixed list of selectable physicians. The roster is
// reference data compiled into the binary; it is not user-editable.
package roster

// Doctor is a roster entry: a display name plus an avatar asset reference.
type Doctor struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

var doctors = []Doctor{
	{Name: "John Green", Avatar: "/assets/images/dr-green.png"},
	{Name: "Leila Cameron", Avatar: "/assets/images/dr-cameron.png"},
	{Name: "David Livingston", Avatar: "/assets/images/dr-livingston.png"},
	{Name: "Evan Peter", Avatar: "/assets/images/dr-peter.png"},
	{Name: "Jane Powell", Avatar: "/assets/images/dr-powell.png"},
	{Name: "Alex Ramirez", Avatar: "/assets/images/dr-ramirez.png"},
	{Name: "Jasmine Lee", Avatar: "/assets/images/dr-lee.png"},
	{Name: "Alyana Cruz", Avatar: "/assets/images/dr-cruz.png"},
	{Name: "Hardik Sharma", Avatar: "/assets/images/dr-sharma.png"},
}

// Doctors returns a copy of the roster so callers cannot mutate it.
func Doctors() []Doctor {
	out := make([]Doctor, len(doctors))
	copy(out, doctors)
	return out
}

// IsKnown reports whether name matches a roster entry exactly.
func IsKnown(name string) bool {
	for _, d := range doctors {
		if d.Name == name {
			return true
		}
	}
	return false
}
