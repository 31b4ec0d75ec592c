package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// BackupDocumentName is the only structured entry of a backup archive.
const BackupDocumentName = "backup.json"

// UploadsPrefix is the archive directory holding image assets.
const UploadsPrefix = "uploads/"
