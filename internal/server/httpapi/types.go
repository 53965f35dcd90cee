package httpapi

// Request/response DTOs for the JSON API.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// entryRequest addresses one entry: Path is the folder relative to the
// user root (forward-slash separated, empty means the root itself) and
// Name is the leaf entry inside it.
type entryRequest struct {
	Username string `json:"username"`
	Path     string `json:"path"`
	Name     string `json:"name"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse carries a stable machine-checkable code plus a
// human-readable message.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listResponse struct {
	Folders []string `json:"folders"`
	Files   []string `json:"files"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Path    string `json:"path"`
}
