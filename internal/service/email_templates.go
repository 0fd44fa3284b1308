package service

import "fmt"

func welcomeEmailTemplate(name, feedURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Upload your first photo and see what everyone else is sharing:
%s

Best,
The %s Team`, name, feedURL, appName)

	return subject, body
}

func newFollowerEmailTemplate(name, followerName, profileURL, appName string) (string, string) {
	subject := fmt.Sprintf("%s started following you on %s", followerName, appName)
	body := fmt.Sprintf(`Hi %s,

%s is now following you. Check out their profile:
%s

Best,
The %s Team`, name, followerName, profileURL, appName)

	return subject, body
}
