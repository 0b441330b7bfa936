// The firmware package describes the capability table of the Playdate.
//
// It mirrors the grouped function tables the device firmware hands to a game
// at launch. All capabilities are exposed directly and in general unsafe: raw
// handles, packed framebuffer rows and untranslated error codes. Use the
// higher level packages to write applications instead.
package firmware

// Inside Playdate C API
// https://sdk.play.date/Inside%20Playdate%20with%20C.html
