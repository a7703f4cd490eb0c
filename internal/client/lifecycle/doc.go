// Package lifecycle drives tasks through Active, Archived and Deleted.
//
// Manager validates user input before anything reaches the Sync Gateway,
// guards against duplicate submissions, and after every successful mutation
// rebuilds reminders from the fresh active set and then asks the
// collaborator to refresh, in that order.
package lifecycle
