// Package billing runs subscription checkout, the customer portal and the
// stripe webhook that keeps the subscription tier of every user current.
package billing
