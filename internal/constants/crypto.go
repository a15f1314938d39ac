package constants

// RequestIDByteSize sizes the random request IDs the staging router mints.
const RequestIDByteSize = 16

// ShareTokenByteSize sizes the random tokens embedded in local share URLs.
const ShareTokenByteSize = 24
