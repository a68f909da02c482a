package mold

// Version is the release of the library and the mold command.
const Version = "0.3.0"
