// Package services contains the Sync Gateway and the connectivity watcher.
//
// The Gateway exposes one method per domain operation. Each method tries the
// Remote Client first and, only when the server cannot be reached (transport
// failure, or the watcher already reports offline), runs the Local Store
// equivalent instead. Server-side errors are surfaced as they are. A 401 on
// an authenticated call clears the session and notifies the collaborator;
// it never falls back.
//
// Every method returns a result.Result; raw transport errors never escape.
package services
