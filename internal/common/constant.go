package common

// AnonymousLabel is the display name shown for posts whose author has no
// human-readable display text.
const AnonymousLabel = "Anonymous"
