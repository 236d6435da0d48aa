package mailer

const verificationTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>Verify your email</h2>
	<p>Hello {{.Name}},</p>
	<p>Thanks for signing up. Click the link below to verify your email address:</p>
	<p><a href="{{.Link}}">Verify email</a></p>
	<p>This link expires in {{.TTL}}. If you did not create an account, you can ignore this message.</p>
</body>
</html>`

const welcomeTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>Welcome aboard</h2>
	<p>Hello {{.Name}},</p>
	<p>Your email is verified and your account is ready to use.</p>
</body>
</html>`

const otpTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>Your one-time code</h2>
	<p>Hello,</p>
	<p>Your one-time login code is:</p>
	<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
	<p>It expires in {{.TTL}}. If you did not request a code, you can ignore this message.</p>
	<p>You can also continue at <a href="{{.Link}}">{{.Link}}</a>.</p>
</body>
</html>`

const invitationTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>You have been invited to {{.EnterpriseName}}</h2>
	<p>Hello,</p>
	<p>{{.InviterName}} has invited you to join <strong>{{.EnterpriseName}}</strong>.</p>
	<p><a href="{{.Link}}">Accept invitation</a></p>
	{{if .TempPassword}}<p>A starter account was created for you. Sign in with this temporary password and change it right away:</p>
	<p style="font-size: 20px; font-weight: bold;">{{.TempPassword}}</p>{{end}}
	<p>This invitation expires in {{.TTL}}.</p>
</body>
</html>`
