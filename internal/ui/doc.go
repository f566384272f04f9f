// Package ui holds the interactive screens run by the event loop.
//
// Screens:
//   - FilePicker: choose which entries of a directory go into a template
//   - TreeViewer: browse a stored template read-only
//   - TemplateEditor: delete templates and edit their descriptions
//
// Each screen implements eventloop.Screen and renders with the shared
// Styles. Key bindings are bubbles/key bindings and the help bar is laid
// out with layout.Distribute.
package ui
