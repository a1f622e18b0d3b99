package http

var VerifySlackSignature = verifySlackSignature
