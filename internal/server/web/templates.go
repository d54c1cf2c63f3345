package web

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} &lsaquo; {{.SiteName}}</title>
</head>
<body>
<h1>{{.SiteName}}</h1>
{{if .Error}}<div id="login_error" role="alert">{{.Error}}</div>{{end}}
{{if .Notice}}<p class="message">{{.Notice}}</p>{{end}}
{{if eq .Form "login"}}
<form name="loginform" id="loginform" action="/login" method="post">
	<p>
		<label for="user_login">Username</label>
		<input type="text" name="log" id="user_login" value="{{.Login}}" size="20" autocomplete="username">
	</p>
	<p>
		<label for="user_pass">Password</label>
		<input type="password" name="pwd" id="user_pass" value="" size="20" autocomplete="current-password">
	</p>
	<p>
		<label for="activation_code">Activation Code<br><small>(required for first time login)</small></label>
		<input type="text" name="activation_code" id="activation_code" value="{{.ActivationCode}}" size="20" autocomplete="off">
	</p>
	<p class="submit"><input type="submit" id="wp-submit" value="Log In"></p>
</form>
<p><a href="/register">Register</a></p>
{{else if eq .Form "register"}}
<form name="registerform" id="registerform" action="/register" method="post">
	<p>
		<label for="user_login">Username</label>
		<input type="text" name="user_login" id="user_login" value="{{.Login}}" size="20" autocomplete="username">
	</p>
	<p>
		<label for="user_email">Email</label>
		<input type="email" name="user_email" id="user_email" value="{{.Email}}" size="25">
	</p>
	<p>
		<label for="user_pass">Password</label>
		<input type="password" name="user_pass" id="user_pass" value="" size="20" autocomplete="new-password">
	</p>
	<p class="submit"><input type="submit" id="wp-submit" value="Register"></p>
</form>
<p><a href="/login">Log in</a></p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Title          string
	SiteName       string
	Form           string
	Error          string
	Notice         string
	Login          string
	Email          string
	ActivationCode string
}
