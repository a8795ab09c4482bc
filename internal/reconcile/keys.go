package reconcile

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// OrderLineKey derives the identity of an order line. Two rows describe the
// same physical item iff order number, product, size, band name and band
// number match; price and dates are payload, not identity.
func OrderLineKey(orderNumber, product, size, bandName, bandNumber string) string {
	joined := strings.Join([]string{orderNumber, product, size, bandName, bandNumber}, "-")
	return whitespaceRun.ReplaceAllString(strings.ToLower(joined), "-")
}

// RawRowKey derives the identity of a raw incident row: the same issue
// reported twice for one order is a single fact.
func RawRowKey(orderNumber, issueTypeProduct string) string {
	return orderNumber + "-" + strings.TrimSpace(issueTypeProduct)
}
