package page

import "github.com/starford/onboard/internal/capability"

// WelcomePath identifies the built-in quick-start page.
const WelcomePath = "welcome"

const (
	signupURL  = "https://build.pyweb.io/accounts/signup/"
	demosURL   = "https://github.com/pywebio/demos"
	helloGIF   = "https://raw.githubusercontent.com/pywebio/demos/main/images/hello_user_demo.gif"
	helloWidth = "350px"

	capabilityPanelHeight = 200
)

const welcomeIntro = "# 👋 Welcome to pyweb.io `App Builder`!\n" +
	"\n" +
	"### Quick Start: Build your first app on *pyweb.io* in 4 steps\n" +
	"\n" +
	"#### 1. Register\n" +
	"- Sign up: " + signupURL + "\n" +
	"- Join pywebio discord server, introduce yourself in #community to receive an invitation code.\n" +
	"\n" +
	"#### 2. Create a new py file\n" +
	"- In App Builder page, use the file manager button (📁) to add a new file (e.g. `my_app.py`)\n" +
	"> **[IMPORTANT]** Remember to add `.py` at the end to run it as a web app. " +
	"Other files types, e.g. TXT, CSV, JSON, can be created and saved, but they are not runnable.\n" +
	"\n" +
	"#### 3. Script in the IDE\n" +
	"- Copy / paste the following code to the IDE:"

const helloApp = `from pywebio import *
from pywebio.output import *
from pywebio.input import *

def main():
    '''
    An interactive web app that takes user's name
    and output hello <username> on the webpage
    '''
    username = input('Input your name')
    put_text('Hello, %s' % username)
`

const welcomeRun = "\n- Click `> Save & Run` to test the app. " +
	"If everything ok, you should see your app up and running like this"

const welcomeLaunch = "\n" +
	"> **Tips**\n" +
	"> - **[IMPORTANT]** pyweb.io executes `main()` function as the app function. " +
	"Running a file without main() will lead to errors.\n" +
	"> - **[IMPORTANT]** pyweb.io manages all hosting configurations. " +
	"`start_server(main, ...)` must be commented or deleted before hitting `Save and Run`.\n" +
	"> - More demo code: " + demosURL + "\n" +
	"\n" +
	"#### 4. Launch your app\n" +
	"Once ready, click the `Launch` button.\n" +
	"\n" +
	"#### Supported packages (you can manage your own package soon)\n"

// Welcome returns the quick-start page. The supported packages panel lists
// caps and sticks to the bottom as it scrolls.
func Welcome(caps *capability.Registry) *Page {
	return &Page{
		Path:  WelcomePath,
		Title: "Welcome to App Builder",
		Blocks: []Block{
			Markdown(welcomeIntro),
			Code(helloApp, "python"),
			Markdown(welcomeRun),
			Image(helloGIF, helloWidth),
			Markdown(welcomeLaunch),
			Scrollable(caps.Text(), capabilityPanelHeight, true),
		},
	}
}
