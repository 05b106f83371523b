package main

import (
	"golang.org/x/xerrors"
)

const (
	driverMemory = "memory"
	driverMongo  = "mongo"
)

var (
	errUnknownDriver   = xerrors.New("unknown store driver")
	errVolatileCustody = xerrors.New("mongo store next to in-memory registry and ledger")
)

// checkStore guards the listing store against the custody it describes. The
// registry and ledger live in process memory, so a durable listing store
// would keep active listings for assets nobody holds after a restart.
// allowVolatile is for deployments that drop the database with the process.
func checkStore(driver string, allowVolatile bool) error {
	switch driver {
	case driverMemory, "":
		return nil
	case driverMongo:
		if !allowVolatile {
			return errVolatileCustody
		}
		return nil
	default:
		return xerrors.Errorf("%w: %s", errUnknownDriver, driver)
	}
}
