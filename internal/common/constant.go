package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token
// of the calling operator.
const AccessTokenHeaderName = "access_token"

// ActivationCodeField is the query parameter and form field that carries
// the activation code from the welcome mail into the login form.
const ActivationCodeField = "activation_code"
