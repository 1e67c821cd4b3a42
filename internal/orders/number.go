package orders

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newOrderNumber derives a human-quotable order number from the creation
// instant plus a random suffix. The unique index on order_number catches the
// rare collision; callers retry once on a unique violation.
func newOrderNumber() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

// newInvoiceNumber mints an INV-XXXXXXXX reference from a fresh uuid.
func newInvoiceNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(raw[:8])
}
