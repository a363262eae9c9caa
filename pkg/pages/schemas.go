package pages

import "github.com/gobarber/web/pkg/validation"

var signInSchema = validation.Object(
	validation.Field("email",
		validation.Email("Type a valid email address."),
		validation.Required("Email is required."),
	),
	validation.Field("password", validation.Required("Password is required.")),
)

var signUpSchema = validation.Object(
	validation.Field("name", validation.Required("Name is required.")),
	validation.Field("email",
		validation.Email("Type a valid email address."),
		validation.Required("Email is required."),
	),
	validation.Field("password", validation.MinLength(6, "Password at least 6 characters.")),
)

var forgotPasswordSchema = validation.Object(
	validation.Field("email",
		validation.Email("Type a valid email."),
		validation.Required("Email is required."),
	),
)

var resetPasswordSchema = validation.Object(
	validation.Field("password", validation.Required("Password is required.")),
	validation.Field("password_confirmation",
		validation.EqualTo("password", "Password confirmation is incorrect."),
		validation.Required("Password is required."),
	),
)

var profileSchema = validation.Object(
	validation.Field("name", validation.Required("Name is required.")),
	validation.Field("email",
		validation.Email("Type a valid email."),
		validation.Required("Email is required."),
	),
	validation.Field("old_password"),
	validation.Field("password",
		validation.When("old_password", validation.Present,
			validation.Required("Password is required."),
		),
	),
	validation.Field("password_confirmation",
		validation.When("old_password", validation.Present,
			validation.Required("Password is required."),
		),
		validation.EqualTo("password", "Incorrect password confirmation."),
	),
)
