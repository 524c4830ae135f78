// Package navigation turns button presses, shakes and reply text into
// selection changes and outbound actions for the notification screen.
//
// The Machine owns no storage of its own. It mutates the slot store selection
// and the shared State, drives the action menu and view collaborators, and
// encodes outbound messages through a Sender. Input precedence is: an open
// action menu captures up/down and select; a busy screen drops select and
// hold; otherwise input navigates records.
package navigation
