// Package command maps named window actions onto the view registry.
//
// Actions use the dotted naming of the key binding layer ("window.close",
// "jump.back", "tag.pop"). Structural registry failures come back as error
// results; running out of history, tags or alternate documents is a no-op.
package command
