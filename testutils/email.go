package testutils

// SampleEmail is a raw email with a DKIM-Signature header. The signature is
// not valid; the fake registry does not check it.
const SampleEmail = "DKIM-Signature: v=1; a=rsa-sha256; c=relaxed/relaxed; d=succinct.xyz;\r\n" +
	" s=google; h=from:to:subject:date:message-id;\r\n" +
	" bh=47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=;\r\n" +
	" b=dGVzdC1zaWduYXR1cmU=\r\n" +
	"From: Residency <residency@succinct.xyz>\r\n" +
	"To: builder@example.com\r\n" +
	"Subject: Your Succinct ZK Residency invite\r\n" +
	"Date: Mon, 3 Mar 2025 10:00:00 +0000\r\n" +
	"Message-ID: <invite-0001@succinct.xyz>\r\n" +
	"\r\n" +
	"You have been invited to the Succinct ZK Residency.\r\n"
