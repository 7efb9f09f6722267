package uuid

import (
	"github.com/nu7hatch/gouuid"
)

// New returns new random uuid as string in XXXXXXXX-XXXX- ... format.
func New() string {
	id, err := uuid.NewV4()
	if err != nil {
		panic("cannot generate random uuid: " + err.Error())
	}
	return id.String()
}
