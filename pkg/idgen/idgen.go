// Package idgen generates the human-readable business codes used across
// the system, e.g. "APT-20260828143005-4821". Codes are display ids; the
// database keys rows by uuid.
package idgen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Prefixes for each entity kind.
const (
	PrefixPatient      = "PAT"
	PrefixStaff        = "STF"
	PrefixHospital     = "HOS"
	PrefixAppointment  = "APT"
	PrefixBill         = "BIL"
	PrefixPrescription = "RX"
	PrefixNotification = "PHN"
	PrefixDeliveryTask = "DLV"
	PrefixNurseRequest = "NRQ"
)

var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New returns a code of the form PREFIX-timestamp-rand. The random
// suffix keeps codes generated within the same second distinct.
func New(prefix string) string {
	mu.Lock()
	n := rng.Intn(10000)
	mu.Unlock()
	return fmt.Sprintf("%s-%s-%04d", prefix, time.Now().UTC().Format("20060102150405"), n)
}
