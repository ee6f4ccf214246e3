package services

// FastRetry exposes the fastRetry helper to external test packages.
var FastRetry = fastRetry
