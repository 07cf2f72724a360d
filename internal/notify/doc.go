// Package notify delivers account notifications and property alerts over
// e-mail, sms, mobile push and telegram, and records every attempt in the
// notifications table.
package notify
