// Package main provides the entry point of the RentFusion api server.
// It serves the REST api with fiber, stores data through gorm and runs
// the property matcher, notification delivery, AI letter and contract
// services, stripe billing and scheduled database backups.
package main
