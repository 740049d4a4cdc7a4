package endpoints

import "chat-hub-backend/internal/api"

type HTTPError = api.HTTPError
