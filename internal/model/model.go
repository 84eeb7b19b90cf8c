// Package model holds the club domain types shared by the HTTP, service and persistence layers.
// Types carry json tags only; persistence mapping lives in the repository implementations.
package model
